package transport

type SignUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Metadata map[string]string `json:"metadata"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ProfileUpdateRequest struct {
	Metadata map[string]string `json:"metadata"`
}

type SubTaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TaskRequest carries a deadline as RFC3339 or a bare YYYY-MM-DD date.
type TaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    string           `json:"priority"`
	Deadline    string           `json:"deadline"`
	SubTasks    []SubTaskRequest `json:"sub_tasks"`
	Version     int              `json:"version"`
}

type JournalRequest struct {
	Mood    string   `json:"mood"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
	Tags    []string `json:"tags"`
	Version int      `json:"version"`
}
