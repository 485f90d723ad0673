package student

// Admission is the public admission form payload.
type Admission struct {
	StudentFirstName string `json:"student_first_name"`
	StudentLastName  string `json:"student_last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	ClassGrade       string `json:"class_grade"`
	LearningGoal     string `json:"learning_goal"`
	GuardianName     string `json:"guardian_name"`
	GuardianPhone    string `json:"guardian_phone"`
	PreferredMode    string `json:"preferred_mode"`
	Address          string `json:"address"`
	Notes            string `json:"notes"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsSuspended bool   `json:"is_suspended"`
	IsStaff     bool   `json:"is_staff,omitempty"`
}

type Gamification struct {
	CurrentStreak        int    `json:"current_streak"`
	LongestStreak        int    `json:"longest_streak"`
	TotalLearningMinutes int    `json:"total_learning_minutes"`
	LastActiveDate       string `json:"last_active_date"`
}

type Profile struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
	Gamification
}

type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	IsRead    bool   `json:"is_read"`
}

type Bookmark struct {
	ID            int64  `json:"id"`
	Resource      int64  `json:"resource"`
	ResourceTitle string `json:"resource_title"`
	ResourceType  string `json:"resource_type"`
	CreatedAt     string `json:"created_at"`
}

type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type QuizOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type QuizQuestion struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Marks   int          `json:"marks,omitempty"`
	Options []QuizOption `json:"options"`
}

type Quiz struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	TimeLimitMinutes int            `json:"time_limit_minutes,omitempty"`
	Questions        []QuizQuestion `json:"questions"`
}

type QuizAnswer struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

type QuizSubmission struct {
	QuizID  int64        `json:"quiz_id"`
	Answers []QuizAnswer `json:"answers"`
}

type QuizResponse struct {
	Question  int64 `json:"question"`
	Selected  int64 `json:"selected_option"`
	IsCorrect bool  `json:"is_correct"`
}

type QuizAttempt struct {
	ID          int64          `json:"id"`
	Quiz        int64          `json:"quiz,omitempty"`
	TotalScore  float64        `json:"total_score"`
	IsCompleted bool           `json:"is_completed"`
	Responses   []QuizResponse `json:"responses,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
}
