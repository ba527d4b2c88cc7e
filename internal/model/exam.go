package model

import "time"

// ExamState enumerates the exam lifecycle.
type ExamState string

const (
	ExamStateNone        ExamState = "NO_EXAM"
	ExamStateInProgress  ExamState = "IN_PROGRESS"
	ExamStateTimeExpired ExamState = "TIME_EXPIRED"
	ExamStateCompleted   ExamState = "COMPLETED"
)

// ExamQuestion is a drawn question tagged with its index in the question set.
type ExamQuestion struct {
	Question
	OriginalIndex int `json:"originalIndex"`
}

// ExamProgress is the single live exam. Answers has one slot per question;
// nil means unanswered.
type ExamProgress struct {
	Questions   []ExamQuestion `json:"questions"`
	Answers     []*int         `json:"answers"`
	StartTime   int64          `json:"startTime"`
	IsCompleted bool           `json:"isCompleted"`
	Results     *Results       `json:"results"`
}

// StartedAt converts StartTime (Unix milliseconds) to a time.
func (p *ExamProgress) StartedAt() time.Time {
	return time.UnixMilli(p.StartTime)
}

// AnsweredCount returns the number of non-nil answers.
func (p *ExamProgress) AnsweredCount() int {
	n := 0
	for _, a := range p.Answers {
		if a != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand outside the store.
func (p *ExamProgress) Clone() *ExamProgress {
	if p == nil {
		return nil
	}
	out := &ExamProgress{
		Questions:   make([]ExamQuestion, len(p.Questions)),
		Answers:     make([]*int, len(p.Answers)),
		StartTime:   p.StartTime,
		IsCompleted: p.IsCompleted,
		Results:     p.Results.Clone(),
	}
	for i, q := range p.Questions {
		out.Questions[i] = q.clone()
	}
	for i, a := range p.Answers {
		out.Answers[i] = cloneAnswer(a)
	}
	return out
}

// AnswerOutcome pairs an exam question with the answer given.
type AnswerOutcome struct {
	Question   ExamQuestion `json:"question"`
	UserAnswer *int         `json:"userAnswer"`
	IsCorrect  bool         `json:"isCorrect"`
}

// Results is computed once when the exam completes. CorrectAnswers holds the
// outcome for every question; IncorrectAnswers is the subset that missed.
type Results struct {
	Score            int             `json:"score"`
	IsPassed         bool            `json:"isPassed"`
	CorrectAnswers   []AnswerOutcome `json:"correctAnswers"`
	IncorrectAnswers []AnswerOutcome `json:"incorrectAnswers"`
	EndTime          int64           `json:"endTime"`
}

func (r *Results) Clone() *Results {
	if r == nil {
		return nil
	}
	out := *r
	out.CorrectAnswers = cloneOutcomes(r.CorrectAnswers)
	out.IncorrectAnswers = cloneOutcomes(r.IncorrectAnswers)
	return &out
}

// ExamView is what the exam screen receives. While the exam runs the answer
// key is withheld; once completed Results carries everything.
type ExamView struct {
	State            ExamState      `json:"state"`
	Questions        []QuestionView `json:"questions"`
	Answers          []*int         `json:"answers"`
	AnsweredCount    int            `json:"answered_count"`
	TotalQuestions   int            `json:"total_questions"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Results          *Results       `json:"results,omitempty"`
}

// SubmitAnswerRequest is the payload for answering an exam question.
type SubmitAnswerRequest struct {
	AnswerIndex *int `json:"answer_index" binding:"required"`
}

func (q ExamQuestion) clone() ExamQuestion {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func cloneOutcomes(in []AnswerOutcome) []AnswerOutcome {
	if in == nil {
		return nil
	}
	out := make([]AnswerOutcome, len(in))
	for i, o := range in {
		out[i] = AnswerOutcome{
			Question:   o.Question.clone(),
			UserAnswer: cloneAnswer(o.UserAnswer),
			IsCorrect:  o.IsCorrect,
		}
	}
	return out
}

func cloneAnswer(a *int) *int {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
