package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-session-client/internal/page"
	"github.com/SAP-F-2025/exam-session-client/internal/services"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
	"github.com/SAP-F-2025/exam-session-client/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	eventsHandler  *EventsHandler
	attemptID      string
}

func NewHandlerManager(
	session *services.Session,
	p *page.Page,
	source EventSource,
	validator *validator.Validator,
	logger utils.Logger,
	attemptID string,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(session, p, validator, logger),
		eventsHandler:  NewEventsHandler(source, p, logger),
		attemptID:      attemptID,
	}
}

// SetupRoutes sets up all UI routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "exam-session-client",
			"attempt_id": hm.attemptID,
		})
	})

	ui := router.Group("/ui")
	{
		ui.GET("/state", hm.sessionHandler.GetState)
		ui.GET("/events", hm.eventsHandler.Stream)
		ui.GET("/leave-check", hm.sessionHandler.LeaveCheck)
		ui.POST("/visibility", hm.sessionHandler.Visibility)
		ui.PUT("/mode", hm.sessionHandler.SetMode)

		ui.POST("/answers", hm.sessionHandler.SelectAnswer)

		// Navigation
		parts := ui.Group("/parts")
		{
			parts.POST("/next", hm.sessionHandler.NextPart)
			parts.POST("/prev", hm.sessionHandler.PrevPart)
			parts.POST("/:part", hm.sessionHandler.SwitchPart)
		}
		questions := ui.Group("/questions")
		{
			questions.POST("/:question/go", hm.sessionHandler.GoToQuestion)
			questions.POST("/:question/visible", hm.sessionHandler.QuestionVisible)
		}

		// Submission
		submit := ui.Group("/submit")
		{
			submit.POST("", hm.sessionHandler.SubmitConfirmation)
			submit.POST("/confirm", hm.sessionHandler.ConfirmSubmit)
			submit.POST("/now", hm.sessionHandler.SubmitNow)
		}

		// Timer
		timer := ui.Group("/timer")
		{
			timer.POST("/pause", hm.sessionHandler.PauseTimer)
			timer.POST("/resume", hm.sessionHandler.ResumeTimer)
			timer.POST("/extend", hm.sessionHandler.ExtendTime)
		}

		// Audio
		audio := ui.Group("/audio")
		{
			audio.POST("/sample/toggle", hm.sessionHandler.ToggleSample)
			audio.POST("/:question/load", hm.sessionHandler.LoadAudio)
			audio.POST("/:question/play", hm.sessionHandler.PlayAudio)
			audio.POST("/:question/pause", hm.sessionHandler.PauseAudio)
			audio.POST("/:question/ended", hm.sessionHandler.AudioEnded)
			audio.POST("/:question/error", hm.sessionHandler.AudioError)
		}
	}
}
