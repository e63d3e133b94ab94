// Package mocks holds testify mocks for the repository ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/repository"
)

type TaskRepository struct {
	mock.Mock
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

func (m *TaskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	args := m.Called(ctx, userID, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, filter)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	created, _ := args.Get(0).(*domain.Task)
	return created, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool, completedAt *time.Time) (*domain.Task, error) {
	args := m.Called(ctx, userID, id, completed, completedAt)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *TaskRepository) InsertSubTasks(ctx context.Context, taskID string, subTasks []domain.SubTask) ([]domain.SubTask, error) {
	args := m.Called(ctx, taskID, subTasks)
	subs, _ := args.Get(0).([]domain.SubTask)
	return subs, args.Error(1)
}

func (m *TaskRepository) DeleteSubTasks(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *TaskRepository) SetSubTaskCompleted(ctx context.Context, taskID, subTaskID string, completed bool) error {
	return m.Called(ctx, taskID, subTaskID, completed).Error(0)
}

type JournalRepository struct {
	mock.Mock
}

var _ repository.JournalRepository = (*JournalRepository)(nil)

func (m *JournalRepository) GetByID(ctx context.Context, userID, id string) (*domain.Journal, error) {
	args := m.Called(ctx, userID, id)
	journal, _ := args.Get(0).(*domain.Journal)
	return journal, args.Error(1)
}

func (m *JournalRepository) List(ctx context.Context, filter repository.JournalFilter) ([]domain.Journal, error) {
	args := m.Called(ctx, filter)
	journals, _ := args.Get(0).([]domain.Journal)
	return journals, args.Error(1)
}

func (m *JournalRepository) Create(ctx context.Context, journal *domain.Journal) (*domain.Journal, error) {
	args := m.Called(ctx, journal)
	created, _ := args.Get(0).(*domain.Journal)
	return created, args.Error(1)
}

func (m *JournalRepository) Update(ctx context.Context, journal *domain.Journal) error {
	return m.Called(ctx, journal).Error(0)
}

func (m *JournalRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *JournalRepository) InsertImages(ctx context.Context, journalID string, urls []string) ([]domain.JournalImage, error) {
	args := m.Called(ctx, journalID, urls)
	images, _ := args.Get(0).([]domain.JournalImage)
	return images, args.Error(1)
}

func (m *JournalRepository) DeleteImages(ctx context.Context, journalID string) error {
	return m.Called(ctx, journalID).Error(0)
}

func (m *JournalRepository) InsertTags(ctx context.Context, journalID string, labels []string) ([]domain.JournalTag, error) {
	args := m.Called(ctx, journalID, labels)
	tags, _ := args.Get(0).([]domain.JournalTag)
	return tags, args.Error(1)
}

func (m *JournalRepository) DeleteTags(ctx context.Context, journalID string) error {
	return m.Called(ctx, journalID).Error(0)
}

type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

type SessionRepository struct {
	mock.Mock
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (m *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*domain.Session)
	return session, args.Error(1)
}

func (m *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SessionRepository) Extend(ctx context.Context, id string, ttl time.Duration) error {
	return m.Called(ctx, id, ttl).Error(0)
}

type ObjectStorage struct {
	mock.Mock
}

var _ repository.ObjectStorage = (*ObjectStorage)(nil)

func (m *ObjectStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *ObjectStorage) Get(ctx context.Context, key string) (string, []byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(1).([]byte)
	return args.String(0), data, args.Error(2)
}

func (m *ObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *ObjectStorage) KeyFromURL(publicURL string) (string, error) {
	args := m.Called(publicURL)
	return args.String(0), args.Error(1)
}
