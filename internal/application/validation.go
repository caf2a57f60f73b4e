package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/interview-engine/internal/scheduler"
)

func validateConfig(config InterviewConfig) *ValidationError {
	vErr := &ValidationError{}
	if config.QuestionCount < MinQuestionCount || config.QuestionCount > MaxQuestionCount {
		vErr.add("question_count", fmt.Sprintf("question_count must be between %d and %d", MinQuestionCount, MaxQuestionCount))
	}
	if config.DurationMinutes < MinDurationMinutes || config.DurationMinutes > MaxDurationMinutes {
		vErr.add("duration_minutes", fmt.Sprintf("duration_minutes must be between %d and %d", MinDurationMinutes, MaxDurationMinutes))
	}
	if !config.Mode.Valid() {
		vErr.add("interview_mode", "interview_mode must be one of video, audio, chat")
	}
	return vErr
}

func validateQuestions(questions []string) ([]string, *ValidationError) {
	vErr := &ValidationError{}
	if len(questions) == 0 {
		vErr.add("questions", "at least one question is required")
		return nil, vErr
	}
	if len(questions) > MaxQuestionCount {
		vErr.add("questions", fmt.Sprintf("at most %d questions are allowed", MaxQuestionCount))
		return nil, vErr
	}
	cleaned := make([]string, 0, len(questions))
	for i, question := range questions {
		question = strings.TrimSpace(question)
		if question == "" {
			vErr.add(fmt.Sprintf("questions[%d]", i), "question must not be blank")
			continue
		}
		cleaned = append(cleaned, question)
	}
	return cleaned, vErr
}

func windowViolations(violations []scheduler.Violation) *ValidationError {
	vErr := &ValidationError{}
	for _, v := range violations {
		vErr.add(v.Field, v.Message)
	}
	return vErr
}

func sameWindow(a, b scheduler.Window) bool {
	return a.Timezone == b.Timezone && sameTime(a.ScheduledAt, b.ScheduledAt) && sameTime(a.ExpiresAt, b.ExpiresAt)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
