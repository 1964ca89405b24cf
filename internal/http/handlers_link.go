package http

import (
	"context"
	"net/http"

	"mibolsillo/internal/apiclient"
	"mibolsillo/internal/core"
	"mibolsillo/internal/fetch"
	applog "mibolsillo/internal/log"
	"mibolsillo/internal/services"
)

type linkPageView struct {
	BotUsername string
	BotURL      string
	Form        linkFormView
}

type linkStatusView struct {
	Status   core.LinkStatus
	ErrorKey string
}

type linkFormView struct {
	Code      string
	ErrorKey  string
	ErrorText string // server message, shown as sent
	Success   bool
}

func (s *Server) botURL() string {
	return "https://t.me/" + s.botUsername
}

// handleLinkTelegram renders the instructions and the code form. The status
// panel loads through /ui/link/status.
func (s *Server) handleLinkTelegram(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "link_page", pageView{
		Title:  "link.title",
		Active: "link",
		Data:   linkPageView{BotUsername: s.botUsername, BotURL: s.botURL()},
	})
}

// handleLinkStatus renders whether the account is linked, or an error
// banner in its place.
func (s *Server) handleLinkStatus(w http.ResponseWriter, r *http.Request) {
	res := fetch.Load(r.Context(), "link_status", func(ctx context.Context) (core.LinkStatus, error) {
		return s.svc(r).Auth.GetLinkStatus(ctx)
	})
	if res.Err != nil {
		if s.handleAPIError(w, r, res.Err) {
			return
		}
		s.renderPartial(w, r, "link_status", linkStatusView{ErrorKey: "link.errorStatus"})
		return
	}
	s.renderPartial(w, r, "link_status", linkStatusView{Status: res.Data})
}

// handleVerifyOTP checks the code locally and only then submits it. On
// success the status panel is told to re-fetch.
func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentLink)
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}

	code := ParseOTP(r.PostForm)
	if !services.ValidOTP(code) {
		s.render(w, r, http.StatusUnprocessableEntity, "link_form", pageView{
			Data: linkFormView{Code: code, ErrorKey: "link.errorInvalid"},
		})
		return
	}

	res, err := s.svc(r).Auth.VerifyOTP(ctx, code)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		logger.WarnContext(ctx, "OTP verification failed",
			applog.FieldOperation, applog.OpVerify,
			applog.FieldError, err)
		view := linkFormView{Code: code, ErrorKey: "link.errorVerify"}
		if msg, ok := apiclient.ServerMessage(err); ok {
			view.ErrorText = msg
		}
		s.render(w, r, http.StatusUnprocessableEntity, "link_form", pageView{Data: view})
		return
	}
	if !res.Success {
		view := linkFormView{Code: code, ErrorKey: "link.errorVerify", ErrorText: res.Message}
		s.render(w, r, http.StatusUnprocessableEntity, "link_form", pageView{Data: view})
		return
	}

	logger.InfoContext(ctx, "Telegram account linked", applog.FieldOperation, applog.OpVerify)
	NewHTMXResponse().TriggerLinkVerified().Apply(w)
	s.renderPartial(w, r, "link_form", linkFormView{Success: true})
}
