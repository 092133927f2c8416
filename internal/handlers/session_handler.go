package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/page"
	"github.com/SAP-F-2025/exam-session-client/internal/services"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
	"github.com/SAP-F-2025/exam-session-client/internal/validator"
	"github.com/gin-gonic/gin"
)

// SessionHandler turns page events into controller calls.
type SessionHandler struct {
	BaseHandler
	session   *services.Session
	page      *page.Page
	validator *validator.Validator
}

type SelectionRequest struct {
	Question int                    `json:"question" validate:"required,min=1"`
	Answer   string                 `json:"answer" validate:"required,max=16"`
	Source   models.SelectionSource `json:"source" validate:"required,selection_source"`
}

type VisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

type ExtendTimeRequest struct {
	Seconds int `json:"seconds" validate:"required,min=1,max=86400"`
}

type ModeRequest struct {
	Mode models.ExamMode `json:"mode" validate:"required,exam_mode"`
}

type AudioErrorRequest struct {
	Message string `json:"message" validate:"max=500"`
}

// StateResponse is the page snapshot plus controller state the page cannot derive.
type StateResponse struct {
	Page     page.Snapshot        `json:"page"`
	Timer    models.TimerSnapshot `json:"timer"`
	Part     int                  `json:"part"`
	Question int                  `json:"question"`
	Answers  map[string]string    `json:"answers"`
	Locked   bool                 `json:"locked"`
	Playing  []int                `json:"playing"`
}

type LeaveResponse struct {
	Confirm bool   `json:"confirm"`
	Message string `json:"message,omitempty"`
}

func NewSessionHandler(session *services.Session, p *page.Page, v *validator.Validator, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		session:     session,
		page:        p,
		validator:   v,
	}
}

func (h *SessionHandler) state() StateResponse {
	part, question := h.session.Exam.Position()
	return StateResponse{
		Page:     h.page.Snapshot(),
		Timer:    h.session.Timer.Snapshot(),
		Part:     part,
		Question: question,
		Answers:  h.session.Exam.Answers().Wire(),
		Locked:   h.session.Submitter.Locked(),
		Playing:  h.session.Audio.Playing(),
	}
}

// GetState returns the whole page.
func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// SelectAnswer handles a radio change or an answer-sheet click.
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	var req SelectionRequest
	if !h.bindAndValidate(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Answer selected", "question", req.Question, "source", req.Source)

	if err := h.session.Exam.HandleSelection(c.Request.Context(), req.Question, req.Answer, req.Source); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answer selected", h.session.Exam.Progress())
}

func (h *SessionHandler) NextPart(c *gin.Context) {
	h.session.Exam.NextPart()
	h.respondPosition(c)
}

func (h *SessionHandler) PrevPart(c *gin.Context) {
	h.session.Exam.PrevPart()
	h.respondPosition(c)
}

// SwitchPart handles a tab click.
func (h *SessionHandler) SwitchPart(c *gin.Context) {
	n := ParseIntParam(c, "part")
	if n == 0 {
		return
	}
	if err := h.session.Exam.SwitchToPart(n); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.respondPosition(c)
}

// GoToQuestion handles a bubble click.
func (h *SessionHandler) GoToQuestion(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Exam.GoToQuestion(q); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.respondPosition(c)
}

// QuestionVisible is reported by the scroll observer.
func (h *SessionHandler) QuestionVisible(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Exam.ObserveQuestion(q); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.respondPosition(c)
}

func (h *SessionHandler) respondPosition(c *gin.Context) {
	part, question := h.session.Exam.Position()
	h.RespondWithSuccess(c, http.StatusOK, "Position updated", gin.H{"part": part, "question": question})
}

// SubmitConfirmation opens the confirmation dialog.
func (h *SessionHandler) SubmitConfirmation(c *gin.Context) {
	unanswered := h.session.Exam.SubmitConfirmation()
	h.RespondWithSuccess(c, http.StatusOK, "Confirm submission", gin.H{"unanswered": unanswered})
}

// ConfirmSubmit submits after the candidate confirmed the dialog.
func (h *SessionHandler) ConfirmSubmit(c *gin.Context) {
	h.LogRequest(c, "Submitting exam")
	if err := h.session.Exam.ConfirmSubmit(c.Request.Context()); err != nil {
		h.respondSubmitError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Exam submitted", nil)
}

// SubmitNow is the button on the time-expired notice.
func (h *SessionHandler) SubmitNow(c *gin.Context) {
	h.LogRequest(c, "Submitting exam immediately")
	if err := h.session.Timer.SubmitNow(c.Request.Context()); err != nil {
		h.respondSubmitError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Exam submitted", nil)
}

func (h *SessionHandler) respondSubmitError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrAlreadySubmitted) {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithError(c, http.StatusBadGateway, "Error submitting exam", err)
}

func (h *SessionHandler) PauseTimer(c *gin.Context) {
	h.session.Timer.Pause()
	h.RespondWithSuccess(c, http.StatusOK, "Timer paused", h.session.Timer.Snapshot())
}

func (h *SessionHandler) ResumeTimer(c *gin.Context) {
	h.session.Timer.Resume()
	h.RespondWithSuccess(c, http.StatusOK, "Timer resumed", h.session.Timer.Snapshot())
}

func (h *SessionHandler) ExtendTime(c *gin.Context) {
	var req ExtendTimeRequest
	if !h.bindAndValidate(c, h.validator, &req) {
		return
	}
	if err := h.session.Timer.AddTime(req.Seconds); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Time extended", h.session.Timer.Snapshot())
}

// Visibility records a tab hide/show. The timer keeps running either way.
func (h *SessionHandler) Visibility(c *gin.Context) {
	var req VisibilityRequest
	if !h.bindAndValidate(c, h.validator, &req) {
		return
	}
	h.session.Timer.VisibilityChanged(c.Request.Context(), req.Hidden)
	c.Status(http.StatusNoContent)
}

// LeaveCheck answers the page's beforeunload probe.
func (h *SessionHandler) LeaveCheck(c *gin.Context) {
	confirm, message := h.session.Timer.ConfirmLeave()
	c.JSON(http.StatusOK, LeaveResponse{Confirm: confirm, Message: message})
}

func (h *SessionHandler) PlayAudio(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Audio.Play(c.Request.Context(), q); err != nil {
		h.respondAudioError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Audio playing", gin.H{"playing": h.session.Audio.Playing()})
}

// respondAudioError reports player failures as a bad gateway; the notice has
// already been shown by the controller.
func (h *SessionHandler) respondAudioError(c *gin.Context, err error) {
	if services.IsNotFound(err) || errors.Is(err, services.ErrReplayNotAllowed) {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithError(c, http.StatusBadGateway, "Audio failed to load", err)
}

func (h *SessionHandler) PauseAudio(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Audio.Pause(q); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Audio paused", nil)
}

func (h *SessionHandler) LoadAudio(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Audio.Load(c.Request.Context(), q); err != nil {
		h.respondAudioError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Audio ready", nil)
}

// AudioEnded is reported when a track plays to the end.
func (h *SessionHandler) AudioEnded(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	if err := h.session.Audio.Ended(q); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AudioError is reported when the page fails to decode a track.
func (h *SessionHandler) AudioError(c *gin.Context) {
	q := ParseIntParam(c, "question")
	if q == 0 {
		return
	}
	var req AudioErrorRequest
	if !h.bindAndValidate(c, h.validator, &req) {
		return
	}
	cause := errors.New("media error")
	if req.Message != "" {
		cause = errors.New(req.Message)
	}
	h.session.Audio.Failed(c.Request.Context(), q, cause)
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) ToggleSample(c *gin.Context) {
	if err := h.session.Audio.ToggleSample(c.Request.Context()); err != nil {
		h.respondAudioError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Sample toggled", h.page.Snapshot().SampleAudio)
}

func (h *SessionHandler) SetMode(c *gin.Context) {
	var req ModeRequest
	if !h.bindAndValidate(c, h.validator, &req) {
		return
	}
	h.session.Audio.SetExamMode(req.Mode)
	h.RespondWithSuccess(c, http.StatusOK, "Mode updated", gin.H{"mode": req.Mode})
}
