package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/repository"
)

const journalColumns = `id, user_id, mood, content, version, created_at, updated_at`

type journalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository returns a Postgres-backed implementation of JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) repository.JournalRepository {
	return &journalRepository{pool: pool}
}

func (r *journalRepository) GetByID(ctx context.Context, userID, id string) (*domain.Journal, error) {
	const query = `SELECT ` + journalColumns + ` FROM journals WHERE id = $1 AND user_id = $2`
	journal, err := scanJournal(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	journals := []domain.Journal{*journal}
	if err := r.attachChildren(ctx, journals); err != nil {
		return nil, err
	}
	return &journals[0], nil
}

func (r *journalRepository) List(ctx context.Context, filter repository.JournalFilter) ([]domain.Journal, error) {
	const query = `SELECT ` + journalColumns + `
	FROM journals
	WHERE user_id = $1
	  AND ($2::timestamptz IS NULL OR created_at >= $2)
	  AND ($3::timestamptz IS NULL OR created_at <= $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		nullTimePtr(filter.CreatedFrom),
		nullTimePtr(filter.CreatedTo),
		limitArg(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *journal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachChildren(ctx, journals); err != nil {
		return nil, err
	}
	return journals, nil
}

func (r *journalRepository) Create(ctx context.Context, journal *domain.Journal) (*domain.Journal, error) {
	if journal == nil {
		return nil, domain.ErrInvalidPayload
	}
	if journal.ID == "" {
		journal.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO journals (id, user_id, mood, content, version, created_at)
	VALUES ($1, $2, $3, $4, 1, COALESCE($5, NOW()))
	RETURNING version, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		journal.ID,
		journal.UserID,
		string(journal.Mood),
		journal.Content,
		nullTime(journal.CreatedAt),
	).Scan(&journal.Version, &journal.CreatedAt, &journal.UpdatedAt); err != nil {
		return nil, err
	}
	return journal, nil
}

func (r *journalRepository) Update(ctx context.Context, journal *domain.Journal) error {
	if journal == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE journals
	SET mood = $3,
		content = $4,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND ($5 = 0 OR version = $5)
	RETURNING version, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		journal.ID,
		journal.UserID,
		string(journal.Mood),
		journal.Content,
		journal.Version,
	).Scan(&journal.Version, &journal.CreatedAt, &journal.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM journals WHERE id = $1 AND user_id = $2)`, journal.ID, journal.UserID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.ErrVersionConflict
		}
		return domain.ErrJournalNotFound
	}
	return err
}

func (r *journalRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM journals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJournalNotFound
	}
	return nil
}

func (r *journalRepository) InsertImages(ctx context.Context, journalID string, urls []string) ([]domain.JournalImage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	images := make([]domain.JournalImage, len(urls))
	batch := &pgx.Batch{}
	for i, url := range urls {
		images[i] = domain.JournalImage{ID: uuid.NewString(), JournalID: journalID, URL: url}
		batch.Queue(`INSERT INTO journal_images (id, journal_id, url) VALUES ($1, $2, $3)`,
			images[i].ID, journalID, url)
	}
	if err := r.execBatch(ctx, batch); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *journalRepository) DeleteImages(ctx context.Context, journalID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM journal_images WHERE journal_id = $1`, journalID)
	return err
}

func (r *journalRepository) InsertTags(ctx context.Context, journalID string, labels []string) ([]domain.JournalTag, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	tags := make([]domain.JournalTag, len(labels))
	batch := &pgx.Batch{}
	for i, label := range labels {
		tags[i] = domain.JournalTag{ID: uuid.NewString(), JournalID: journalID, Label: label}
		batch.Queue(`INSERT INTO journal_tags (id, journal_id, label) VALUES ($1, $2, $3)`,
			tags[i].ID, journalID, label)
	}
	if err := r.execBatch(ctx, batch); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *journalRepository) DeleteTags(ctx context.Context, journalID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM journal_tags WHERE journal_id = $1`, journalID)
	return err
}

func (r *journalRepository) execBatch(ctx context.Context, batch *pgx.Batch) error {
	results := r.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}

// attachChildren loads images and tags for all journals with one query per child table.
func (r *journalRepository) attachChildren(ctx context.Context, journals []domain.Journal) error {
	if len(journals) == 0 {
		return nil
	}
	ids := make([]string, len(journals))
	index := make(map[string]int, len(journals))
	for i, j := range journals {
		ids[i] = j.ID
		index[j.ID] = i
	}

	imgRows, err := r.pool.Query(ctx,
		`SELECT id, journal_id, url FROM journal_images WHERE journal_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	for imgRows.Next() {
		var img domain.JournalImage
		if err := imgRows.Scan(&img.ID, &img.JournalID, &img.URL); err != nil {
			imgRows.Close()
			return err
		}
		i := index[img.JournalID]
		journals[i].Images = append(journals[i].Images, img)
	}
	imgRows.Close()
	if err := imgRows.Err(); err != nil {
		return err
	}

	tagRows, err := r.pool.Query(ctx,
		`SELECT id, journal_id, label FROM journal_tags WHERE journal_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag domain.JournalTag
		if err := tagRows.Scan(&tag.ID, &tag.JournalID, &tag.Label); err != nil {
			return err
		}
		i := index[tag.JournalID]
		journals[i].Tags = append(journals[i].Tags, tag)
	}
	return tagRows.Err()
}

func scanJournal(row scanner) (*domain.Journal, error) {
	var (
		journal domain.Journal
		mood    string
	)
	if err := row.Scan(
		&journal.ID,
		&journal.UserID,
		&mood,
		&journal.Content,
		&journal.Version,
		&journal.CreatedAt,
		&journal.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}
		return nil, err
	}
	journal.Mood = domain.Mood(mood)
	return &journal, nil
}
