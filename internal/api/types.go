package api

// Difficulty is the difficulty level of a question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a question record from the question bank
type Question struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Domain      string     `json:"domain"`
	TechStack   string     `json:"techStack"`
	Difficulty  Difficulty `json:"difficulty"`
	IdealAnswer string     `json:"idealAnswer,omitempty"`
	Tags        []string   `json:"tags"`
}

// NewQuestion is a question without an id, as sent on creation
type NewQuestion struct {
	Text        string     `json:"text"`
	Domain      string     `json:"domain"`
	TechStack   string     `json:"techStack"`
	Difficulty  Difficulty `json:"difficulty"`
	IdealAnswer string     `json:"idealAnswer"`
	Tags        []string   `json:"tags"`
}

// Interview is one candidate's interview session.
// The question list is fixed at creation; CurrentQuestionIndex points into it.
type Interview struct {
	ID                   string            `json:"id"`
	CandidateName        string            `json:"candidateName"`
	Questions            []Question        `json:"questions"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Responses            map[string]string `json:"responses"`
}

// CurrentQuestion returns the question under the cursor.
// ok is false when the cursor is outside the question list.
func (i *Interview) CurrentQuestion() (Question, bool) {
	if i.CurrentQuestionIndex < 0 || i.CurrentQuestionIndex >= len(i.Questions) {
		return Question{}, false
	}
	return i.Questions[i.CurrentQuestionIndex], true
}

// Meta returns the question used for session-level domain, tech stack and
// difficulty. Sessions carry no metadata of their own, so it is questions[0].
func (i *Interview) Meta() (Question, bool) {
	if len(i.Questions) == 0 {
		return Question{}, false
	}
	return i.Questions[0], true
}

// NewInterview is the body of a create-session request
type NewInterview struct {
	CandidateName string     `json:"candidateName"`
	Domain        string     `json:"domain"`
	TechStack     string     `json:"techStack"`
	Difficulty    Difficulty `json:"difficulty"`
}

// AnswerRequest is the body of a submit-response request
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// QuestionUsage is one entry of the top-questions ranking
type QuestionUsage struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

// Stats is the backend-computed aggregate over completed sessions
type Stats struct {
	TotalInterviews int             `json:"totalInterviews"`
	AverageScore    float64         `json:"averageScore"`
	TopQuestions    []QuestionUsage `json:"topQuestions"`
}

// ErrorBody is the best-effort error payload returned by the backend
type ErrorBody struct {
	Message string `json:"message"`
}
