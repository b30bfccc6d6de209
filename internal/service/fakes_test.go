package service

import (
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/totosugito/sicerdas-sub001/internal/dto"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func boolPtr(b bool) *bool { return &b }

func optUUID(id uuid.UUID) dto.OptionalUUID {
	return dto.OptionalUUID{Set: true, Value: &id}
}

var (
	_ repository.PackageRepository       = (*fakePackageRepo)(nil)
	_ repository.SessionRepository       = (*fakeSessionRepo)(nil)
	_ repository.SessionAnswerRepository = (*fakeAnswerRepo)(nil)
	_ repository.QuestionRepository      = (*fakeQuestionRepo)(nil)
	_ repository.StatsRepository         = (*fakeStatsRepo)(nil)
	_ Transactor                         = (*fakeTransactor)(nil)
)

// fakeTransactor runs the callback directly. Repositories treat a nil tx as
// their own connection, so fakes just ignore it.
type fakeTransactor struct {
	err error
}

func (f *fakeTransactor) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	if f.err != nil {
		return f.err
	}
	return fc(nil)
}

type fakePackageRepo struct {
	packages map[uuid.UUID]*model.Package
	order    map[uuid.UUID][]model.PackageQuestion
	created  []*model.Package
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{
		packages: make(map[uuid.UUID]*model.Package),
		order:    make(map[uuid.UUID][]model.PackageQuestion),
	}
}

func (f *fakePackageRepo) Create(pkg *model.Package) error {
	pkg.ID = uuid.New()
	pkg.CreatedAt = time.Now()
	f.packages[pkg.ID] = pkg
	f.order[pkg.ID] = pkg.Questions
	f.created = append(f.created, pkg)
	return nil
}

func (f *fakePackageRepo) FindActiveByID(id uuid.UUID) (*model.Package, error) {
	pkg, ok := f.packages[id]
	if !ok || !pkg.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *pkg
	return &copied, nil
}

func (f *fakePackageRepo) FindQuestionOrder(packageID uuid.UUID) ([]model.PackageQuestion, error) {
	assignments := append([]model.PackageQuestion(nil), f.order[packageID]...)
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].QuestionOrder < assignments[j].QuestionOrder
	})
	return assignments, nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*model.Session
	answers  *fakeAnswerRepo
}

func newFakeSessionRepo(answers *fakeAnswerRepo) *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*model.Session),
		answers:  answers,
	}
}

func (f *fakeSessionRepo) Create(session *model.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	for i := range session.Answers {
		session.Answers[i].ID = uuid.New()
		session.Answers[i].SessionID = session.ID
		if f.answers != nil {
			stored := session.Answers[i]
			f.answers.rows = append(f.answers.rows, &stored)
		}
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByIDAndUser(id, userID uuid.UUID) (*model.Session, error) {
	session, ok := f.sessions[id]
	if !ok || session.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) FindByIDAndUserWithPackage(id, userID uuid.UUID) (*model.Session, error) {
	return f.FindByIDAndUser(id, userID)
}

func (f *fakeSessionRepo) Finalize(tx *gorm.DB, id uuid.UUID, status string, endTime time.Time, score *float64) error {
	session, ok := f.sessions[id]
	if !ok || session.Status != model.SessionStatusInProgress {
		return gorm.ErrRecordNotFound
	}
	session.Status = status
	session.EndTime = &endTime
	session.Score = score
	session.UpdatedAt = time.Now()
	return nil
}

func (f *fakeSessionRepo) ListUserIDs() ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var userIDs []uuid.UUID
	for _, session := range f.sessions {
		if !seen[session.UserID] {
			seen[session.UserID] = true
			userIDs = append(userIDs, session.UserID)
		}
	}
	return userIDs, nil
}

func (f *fakeSessionRepo) FindByUser(userID uuid.UUID) ([]model.Session, error) {
	var sessions []model.Session
	for _, session := range f.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

type fakeAnswerRepo struct {
	rows []*model.SessionAnswer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{}
}

func (f *fakeAnswerRepo) FindBySessionID(sessionID uuid.UUID) ([]model.SessionAnswer, error) {
	var answers []model.SessionAnswer
	for _, row := range f.rows {
		if row.SessionID == sessionID {
			answers = append(answers, *row)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].QuestionOrder < answers[j].QuestionOrder
	})
	return answers, nil
}

func (f *fakeAnswerRepo) PartialUpdate(sessionID, questionID uuid.UUID, updates map[string]interface{}) error {
	for _, row := range f.rows {
		if row.SessionID != sessionID || row.QuestionID != questionID {
			continue
		}
		if v, ok := updates["selected_option_id"]; ok {
			if v == nil {
				row.SelectedOptionID = nil
			} else {
				id := v.(uuid.UUID)
				row.SelectedOptionID = &id
			}
		}
		if v, ok := updates["text_answer"]; ok {
			if v == nil {
				row.TextAnswer = nil
			} else {
				row.TextAnswer = v.(datatypes.JSON)
			}
		}
		if v, ok := updates["is_doubtful"]; ok {
			row.IsDoubtful = v.(bool)
		}
		row.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeAnswerRepo) UpdateCorrectness(tx *gorm.DB, grades []repository.AnswerGrade) error {
	byID := make(map[uuid.UUID]bool, len(grades))
	for _, g := range grades {
		byID[g.AnswerID] = g.IsCorrect
	}
	for _, row := range f.rows {
		if verdict, ok := byID[row.ID]; ok {
			v := verdict
			row.IsCorrect = &v
			row.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeAnswerRepo) FindGradedBySessionIDs(sessionIDs []uuid.UUID) ([]model.SessionAnswer, error) {
	wanted := make(map[uuid.UUID]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	var answers []model.SessionAnswer
	for _, row := range f.rows {
		if wanted[row.SessionID] && row.IsCorrect != nil {
			answers = append(answers, *row)
		}
	}
	return answers, nil
}

type fakeQuestionRepo struct {
	correct map[uuid.UUID]uuid.UUID
	tags    map[uuid.UUID][]uuid.UUID
	options []model.QuestionOption
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{
		correct: make(map[uuid.UUID]uuid.UUID),
		tags:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeQuestionRepo) FindCorrectOptionIDs(questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	result := make(map[uuid.UUID]uuid.UUID)
	for _, id := range questionIDs {
		if optionID, ok := f.correct[id]; ok {
			result[id] = optionID
		}
	}
	return result, nil
}

func (f *fakeQuestionRepo) FindTagIDsByQuestionIDs(questionIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range questionIDs {
		if tagIDs, ok := f.tags[id]; ok {
			result[id] = tagIDs
		}
	}
	return result, nil
}

func (f *fakeQuestionRepo) FindOptionsByQuestionIDs(questionIDs []uuid.UUID) ([]model.QuestionOption, error) {
	wanted := make(map[uuid.UUID]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	var options []model.QuestionOption
	for _, opt := range f.options {
		if wanted[opt.QuestionID] {
			options = append(options, opt)
		}
	}
	return options, nil
}

type userSubjectKey struct {
	UserID    uuid.UUID
	SubjectID uuid.UUID
}

type userTagKey struct {
	UserID uuid.UUID
	TagID  uuid.UUID
}

// fakeStatsRepo mirrors the upsert arithmetic of the real repository: deltas
// increment relative to the stored row, replaces overwrite it.
type fakeStatsRepo struct {
	global   map[uuid.UUID]*model.UserStatsGlobal
	subjects map[userSubjectKey]*model.UserStatsSubject
	tags     map[userTagKey]*model.UserStatsTag

	subjectNames map[uuid.UUID]string
	tagNames     map[uuid.UUID]string

	replaceErrFor map[uuid.UUID]error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		global:        make(map[uuid.UUID]*model.UserStatsGlobal),
		subjects:      make(map[userSubjectKey]*model.UserStatsSubject),
		tags:          make(map[userTagKey]*model.UserStatsTag),
		subjectNames:  make(map[uuid.UUID]string),
		tagNames:      make(map[uuid.UUID]string),
		replaceErrFor: make(map[uuid.UUID]error),
	}
}

func (f *fakeStatsRepo) ApplyGlobalDelta(tx *gorm.DB, userID uuid.UUID, delta repository.GlobalDelta) error {
	now := time.Now()
	row, ok := f.global[userID]
	if !ok {
		f.global[userID] = &model.UserStatsGlobal{
			UserID:                 userID,
			TotalExamsTaken:        1,
			TotalQuestionsAnswered: delta.Answered,
			TotalCorrectAnswers:    delta.Correct,
			TotalWrongAnswers:      delta.Wrong,
			AverageScore:           delta.Score,
			LastActiveAt:           &now,
			UpdatedAt:              now,
		}
		return nil
	}
	row.AverageScore = (row.AverageScore*float64(row.TotalExamsTaken) + delta.Score) / float64(row.TotalExamsTaken+1)
	row.TotalExamsTaken++
	row.TotalQuestionsAnswered += delta.Answered
	row.TotalCorrectAnswers += delta.Correct
	row.TotalWrongAnswers += delta.Wrong
	row.LastActiveAt = &now
	row.UpdatedAt = now
	return nil
}

func (f *fakeStatsRepo) ApplySubjectDelta(tx *gorm.DB, userID, subjectID uuid.UUID, delta repository.TallyDelta) error {
	key := userSubjectKey{UserID: userID, SubjectID: subjectID}
	row, ok := f.subjects[key]
	if !ok {
		row = &model.UserStatsSubject{ID: uuid.New(), UserID: userID, SubjectID: subjectID}
		f.subjects[key] = row
	}
	row.TotalQuestionsAnswered += delta.Answered
	row.TotalCorrect += delta.Correct
	row.TotalWrong += delta.Wrong
	if row.TotalQuestionsAnswered > 0 {
		row.AccuracyRate = float64(row.TotalCorrect) / float64(row.TotalQuestionsAnswered) * 100
	}
	row.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStatsRepo) ApplyTagDelta(tx *gorm.DB, userID, tagID uuid.UUID, delta repository.TallyDelta) error {
	key := userTagKey{UserID: userID, TagID: tagID}
	row, ok := f.tags[key]
	if !ok {
		row = &model.UserStatsTag{ID: uuid.New(), UserID: userID, TagID: tagID}
		f.tags[key] = row
	}
	row.TotalQuestionsAnswered += delta.Answered
	row.TotalCorrect += delta.Correct
	row.TotalWrong += delta.Wrong
	if row.TotalQuestionsAnswered > 0 {
		row.AccuracyRate = float64(row.TotalCorrect) / float64(row.TotalQuestionsAnswered) * 100
	}
	row.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStatsRepo) ReplaceGlobal(tx *gorm.DB, stats *model.UserStatsGlobal) error {
	if err := f.replaceErrFor[stats.UserID]; err != nil {
		return err
	}
	copied := *stats
	copied.UpdatedAt = time.Now()
	f.global[stats.UserID] = &copied
	return nil
}

func (f *fakeStatsRepo) ReplaceSubject(tx *gorm.DB, stats *model.UserStatsSubject) error {
	copied := *stats
	copied.UpdatedAt = time.Now()
	f.subjects[userSubjectKey{UserID: stats.UserID, SubjectID: stats.SubjectID}] = &copied
	return nil
}

func (f *fakeStatsRepo) ReplaceTag(tx *gorm.DB, stats *model.UserStatsTag) error {
	copied := *stats
	copied.UpdatedAt = time.Now()
	f.tags[userTagKey{UserID: stats.UserID, TagID: stats.TagID}] = &copied
	return nil
}

func (f *fakeStatsRepo) FindGlobalByUser(userID uuid.UUID) (*model.UserStatsGlobal, error) {
	row, ok := f.global[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeStatsRepo) FindSubjectsByUser(userID uuid.UUID) ([]repository.SubjectStatsRow, error) {
	var rows []repository.SubjectStatsRow
	for key, stats := range f.subjects {
		if key.UserID == userID {
			rows = append(rows, repository.SubjectStatsRow{
				UserStatsSubject: *stats,
				SubjectName:      f.subjectNames[key.SubjectID],
			})
		}
	}
	return rows, nil
}

func (f *fakeStatsRepo) FindTagsByUser(userID uuid.UUID) ([]repository.TagStatsRow, error) {
	var rows []repository.TagStatsRow
	for key, stats := range f.tags {
		if key.UserID == userID {
			rows = append(rows, repository.TagStatsRow{
				UserStatsTag: *stats,
				TagName:      f.tagNames[key.TagID],
			})
		}
	}
	return rows, nil
}

func (f *fakeStatsRepo) TopByAverageScore(limit int) ([]model.UserStatsGlobal, error) {
	var rows []model.UserStatsGlobal
	for _, stats := range f.global {
		rows = append(rows, *stats)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].AverageScore > rows[j].AverageScore
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
