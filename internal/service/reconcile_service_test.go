package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/model"
)

func newReconcileService(env *submitTestEnv) ReconcileService {
	return NewReconcileService(
		env.sessionRepo, env.answerRepo, env.questionRepo, env.statsRepo, &fakeTransactor{},
	)
}

func TestRebuildUserStats(t *testing.T) {
	userID := uuid.New()
	subjectID := uuid.New()
	tagID := uuid.New()
	questionID := uuid.New()

	score75 := 75.0
	score25 := 25.0
	sessions := []model.Session{
		{ID: uuid.New(), UserID: userID, Status: model.SessionStatusCompleted, Score: &score75},
		{ID: uuid.New(), UserID: userID, Status: model.SessionStatusCompleted, Score: &score25},
		{ID: uuid.New(), UserID: userID, Status: model.SessionStatusAbandoned},
		{ID: uuid.New(), UserID: userID, Status: model.SessionStatusInProgress},
	}
	answers := []model.SessionAnswer{
		{QuestionID: questionID, IsCorrect: boolPtr(true), Question: model.Question{SubjectID: subjectID}},
		{QuestionID: questionID, IsCorrect: boolPtr(false), Question: model.Question{SubjectID: subjectID}},
		{QuestionID: questionID, IsCorrect: boolPtr(true), Question: model.Question{SubjectID: subjectID}},
		{QuestionID: questionID, IsCorrect: boolPtr(false), Question: model.Question{SubjectID: subjectID}},
	}
	tags := map[uuid.UUID][]uuid.UUID{questionID: {tagID}}

	rebuilt := rebuildUserStats(userID, sessions, answers, tags)

	if rebuilt.Global.TotalExamsTaken != 2 {
		t.Errorf("exams taken = %d, want 2 (abandoned and open excluded)", rebuilt.Global.TotalExamsTaken)
	}
	if !almostEqual(rebuilt.Global.AverageScore, 50) {
		t.Errorf("average = %v, want 50", rebuilt.Global.AverageScore)
	}
	if rebuilt.Global.TotalQuestionsAnswered != 4 || rebuilt.Global.TotalCorrectAnswers != 2 || rebuilt.Global.TotalWrongAnswers != 2 {
		t.Errorf("counters = %+v", rebuilt.Global)
	}
	if len(rebuilt.Subjects) != 1 || len(rebuilt.Tags) != 1 {
		t.Fatalf("rows = %d subjects, %d tags, want 1 each", len(rebuilt.Subjects), len(rebuilt.Tags))
	}
	if !almostEqual(rebuilt.Subjects[0].AccuracyRate, 50) {
		t.Errorf("subject accuracy = %v, want 50", rebuilt.Subjects[0].AccuracyRate)
	}
	if !almostEqual(rebuilt.Tags[0].AccuracyRate, 50) {
		t.Errorf("tag accuracy = %v, want 50", rebuilt.Tags[0].AccuracyRate)
	}
}

func TestRebuildUserStats_NoHistory(t *testing.T) {
	rebuilt := rebuildUserStats(uuid.New(), nil, nil, nil)
	if rebuilt.Global.TotalExamsTaken != 0 || rebuilt.Global.AverageScore != 0 {
		t.Errorf("global = %+v, want zeroes", rebuilt.Global)
	}
	if rebuilt.Global.LastActiveAt != nil {
		t.Error("last active set with no sessions")
	}
}

func TestReconcileConvergesWithIncremental(t *testing.T) {
	env := newSubmitTestEnv()
	userID := uuid.New()
	subjectID := uuid.New()
	tagID := uuid.New()
	packageID, questionIDs, correctIDs := env.seedGradedPackage(4, tagID)

	first := env.takeExam(t, userID, packageID, questionIDs, correctIDs, subjectID, 2)
	if _, err := env.submission.SubmitSession(userID, first); err != nil {
		t.Fatalf("submit: %v", err)
	}
	second := env.takeExam(t, userID, packageID, questionIDs, correctIDs, subjectID, 3)
	if _, err := env.submission.SubmitSession(userID, second); err != nil {
		t.Fatalf("submit: %v", err)
	}

	incremental := *env.statsRepo.global[userID]

	// Corrupt the rollups the way partial failures do; the rebuild must
	// restore the values the incremental path arrived at.
	env.statsRepo.global[userID].TotalCorrectAnswers += 7
	env.statsRepo.global[userID].AverageScore = 12.34
	key := userSubjectKey{UserID: userID, SubjectID: subjectID}
	env.statsRepo.subjects[key].TotalCorrect = 0
	env.statsRepo.subjects[key].AccuracyRate = 0

	reconcile := newReconcileService(env)
	result, err := reconcile.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.UsersProcessed != 1 || result.UsersFailed != 0 {
		t.Fatalf("result = %+v, want 1 processed", result)
	}

	rebuilt := env.statsRepo.global[userID]
	if rebuilt.TotalExamsTaken != incremental.TotalExamsTaken ||
		rebuilt.TotalQuestionsAnswered != incremental.TotalQuestionsAnswered ||
		rebuilt.TotalCorrectAnswers != incremental.TotalCorrectAnswers ||
		rebuilt.TotalWrongAnswers != incremental.TotalWrongAnswers {
		t.Errorf("rebuilt counters %+v diverge from incremental %+v", rebuilt, incremental)
	}
	if !almostEqual(rebuilt.AverageScore, incremental.AverageScore) {
		t.Errorf("rebuilt average %v != incremental %v", rebuilt.AverageScore, incremental.AverageScore)
	}

	subject := env.statsRepo.subjects[key]
	if subject.TotalCorrect != 5 || !almostEqual(subject.AccuracyRate, 62.5) {
		t.Errorf("subject stats not restored: %+v", subject)
	}

	// Idempotence: a second run changes nothing.
	before := *env.statsRepo.global[userID]
	if _, err := reconcile.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	after := env.statsRepo.global[userID]
	if before.TotalExamsTaken != after.TotalExamsTaken || !almostEqual(before.AverageScore, after.AverageScore) ||
		before.TotalCorrectAnswers != after.TotalCorrectAnswers {
		t.Errorf("second run changed stats: %+v -> %+v", before, after)
	}
}

func TestReconcileSkipsFailedUser(t *testing.T) {
	env := newSubmitTestEnv()
	subjectID := uuid.New()
	packageID, questionIDs, correctIDs := env.seedGradedPackage(2, uuid.New())

	badUser := uuid.New()
	goodUser := uuid.New()
	for _, userID := range []uuid.UUID{badUser, goodUser} {
		sessionID := env.takeExam(t, userID, packageID, questionIDs, correctIDs, subjectID, 1)
		if _, err := env.submission.SubmitSession(userID, sessionID); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	env.statsRepo.replaceErrFor[badUser] = errors.New("deadlock detected")

	result, err := newReconcileService(env).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.UsersProcessed != 1 || result.UsersFailed != 1 {
		t.Fatalf("result = %+v, want 1 processed and 1 failed", result)
	}
	if env.statsRepo.global[goodUser] == nil {
		t.Error("good user's stats missing after run")
	}
}

func TestReconcileHonorsContextCancellation(t *testing.T) {
	env := newSubmitTestEnv()
	packageID, questionIDs, correctIDs := env.seedGradedPackage(1, uuid.New())
	env.takeExam(t, uuid.New(), packageID, questionIDs, correctIDs, uuid.New(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newReconcileService(env).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
