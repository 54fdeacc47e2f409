package domain

import "fmt"

// Validate checks that every question has OptionCount options and an in-range answer.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %s has no questions", ErrInvalidQuiz, q.ID)
	}
	for i, question := range q.Questions {
		if len(question.Options) != OptionCount {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuiz, i, len(question.Options))
		}
		if question.Answer < 0 || question.Answer >= OptionCount {
			return fmt.Errorf("%w: question %d answer %d out of range", ErrInvalidQuiz, i, question.Answer)
		}
	}
	return nil
}
