package service

import (
	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
)

// sessionGrade is the full outcome of grading one session: per-answer
// verdicts, the session score, and the per-subject / per-tag tallies the
// stats aggregator applies.
type sessionGrade struct {
	Grades         []repository.AnswerGrade
	Score          float64
	TotalCorrect   int
	TotalQuestions int
	SubjectTallies map[uuid.UUID]repository.TallyDelta
	TagTallies     map[uuid.UUID]repository.TallyDelta
}

// gradeSession grades every answer of a session against the question bank's
// correct-option markers. An answer is correct iff its selected option equals
// the question's marked-correct option; a blank selection counts incorrect.
// Essay questions have no correct-option marker, so they always grade
// incorrect here; product has not decided a scoring rule for free text yet.
func gradeSession(answers []model.SessionAnswer, correctOptions map[uuid.UUID]uuid.UUID, questionTags map[uuid.UUID][]uuid.UUID) sessionGrade {
	result := sessionGrade{
		Grades:         make([]repository.AnswerGrade, 0, len(answers)),
		TotalQuestions: len(answers),
		SubjectTallies: make(map[uuid.UUID]repository.TallyDelta),
		TagTallies:     make(map[uuid.UUID]repository.TallyDelta),
	}

	for _, answer := range answers {
		correctOption, hasKey := correctOptions[answer.QuestionID]
		isCorrect := hasKey && answer.SelectedOptionID != nil && *answer.SelectedOptionID == correctOption
		if isCorrect {
			result.TotalCorrect++
		}
		result.Grades = append(result.Grades, repository.AnswerGrade{
			AnswerID:  answer.ID,
			IsCorrect: isCorrect,
		})

		subjectTally := result.SubjectTallies[answer.Question.SubjectID]
		applyTally(&subjectTally, isCorrect)
		result.SubjectTallies[answer.Question.SubjectID] = subjectTally

		for _, tagID := range questionTags[answer.QuestionID] {
			tagTally := result.TagTallies[tagID]
			applyTally(&tagTally, isCorrect)
			result.TagTallies[tagID] = tagTally
		}
	}

	if result.TotalQuestions > 0 {
		result.Score = float64(result.TotalCorrect) / float64(result.TotalQuestions) * 100
	}
	return result
}

func applyTally(t *repository.TallyDelta, correct bool) {
	t.Answered++
	if correct {
		t.Correct++
	} else {
		t.Wrong++
	}
}
