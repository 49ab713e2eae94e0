package storage

// Transcript is an exported interview session
type Transcript struct {
	InterviewID   string `json:"interview_id"`
	CandidateName string `json:"candidate_name"`
	Domain        string `json:"domain,omitempty"`
	TechStack     string `json:"tech_stack,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
	Timestamp     string `json:"timestamp"`
	// Progress is the 1-based position of the session's cursor
	Progress            int  `json:"progress"`
	TotalQuestions      int  `json:"total_questions"`
	QuestionsAndAnswers []QA `json:"questions_and_answers"`
}

// QA is one question of the session and the recorded answer, if any
type QA struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Answered   bool   `json:"answered"`
}

// Answered counts the questions that have a recorded answer
func (t *Transcript) Answered() int {
	n := 0
	for _, qa := range t.QuestionsAndAnswers {
		if qa.Answered {
			n++
		}
	}
	return n
}
