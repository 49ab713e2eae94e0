package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"interview-console/internal/api"
)

const (
	filePrefix = "interview_"
	fileSuffix = ".json"
)

// BuildTranscript turns a session into its exportable form
func BuildTranscript(iv api.Interview, now time.Time) *Transcript {
	t := &Transcript{
		InterviewID:         iv.ID,
		CandidateName:       iv.CandidateName,
		Timestamp:           now.UTC().Format(time.RFC3339),
		TotalQuestions:      len(iv.Questions),
		QuestionsAndAnswers: make([]QA, 0, len(iv.Questions)),
	}
	if meta, ok := iv.Meta(); ok {
		t.Domain = meta.Domain
		t.TechStack = meta.TechStack
		t.Difficulty = string(meta.Difficulty)
	}
	if _, ok := iv.CurrentQuestion(); ok {
		t.Progress = iv.CurrentQuestionIndex + 1
	}

	for _, q := range iv.Questions {
		answer, answered := iv.Responses[q.ID]
		t.QuestionsAndAnswers = append(t.QuestionsAndAnswers, QA{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     answer,
			Answered:   answered,
		})
	}
	return t
}

// checkID rejects ids that would escape the transcript directory
func checkID(interviewID string) error {
	if interviewID == "" || interviewID == "." || interviewID == ".." || strings.ContainsAny(interviewID, `/\`) {
		return fmt.Errorf("invalid interview id %q", interviewID)
	}
	return nil
}

// SaveTranscript writes the transcript into dir and returns the file path
func SaveTranscript(dir string, t *Transcript) (string, error) {
	if err := checkID(t.InterviewID); err != nil {
		return "", err
	}

	// create the directory if it does not exist yet
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("error creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filePrefix+t.InterviewID+fileSuffix)

	jsonData, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling transcript: %w", err)
	}

	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return "", fmt.Errorf("error writing file %s: %w", path, err)
	}

	return path, nil
}

// LoadTranscript reads the transcript of interviewID from dir
func LoadTranscript(dir, interviewID string) (*Transcript, error) {
	if err := checkID(interviewID); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, filePrefix+interviewID+fileSuffix)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	var t Transcript
	err = json.Unmarshal(data, &t)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling transcript: %w", err)
	}

	return &t, nil
}

// ListTranscripts returns the interview ids exported into dir, sorted
func ListTranscripts(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	return ids, nil
}
