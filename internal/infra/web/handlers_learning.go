package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"learning-access/internal/domain/model"
	"learning-access/internal/infra/logging"
	"learning-access/internal/usecase"
)

type redeemRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type redeemResponse struct {
	*usecase.GrantDescription
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	desc, err := s.redeemUC.Redeem(r.Context(), SessionFrom(r.Context()).UserID, req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := "redeem.success_program"
	var token string
	if desc.Kind == model.EffectRole {
		key = "redeem.success_role"
		token = s.refreshSession(w, r)
	}
	writeJSON(w, http.StatusOK, redeemResponse{
		GrantDescription: desc,
		Message:          s.tr.T(s.lang(r), key, desc.TargetTitle),
		Token:            token,
	})
}

// refreshSession re-mints the caller's token so its role claim matches the
// stored profile. Guards read the stored role anyway, so failure only logs.
func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) string {
	sess := SessionFrom(r.Context())
	p, err := s.authUC.Profile(r.Context(), sess.UserID)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("could not reload profile after role grant")
		return ""
	}
	token, _, err := s.sessions.Mint(w, p)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("could not re-mint session after role grant")
		return ""
	}
	return token
}

func (s *Server) handleMyRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := s.redeemUC.History(r.Context(), SessionFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []redemptionView `json:"data"`
	}{Data: toRedemptionViews(list)})
}

func (s *Server) handlePrograms(w http.ResponseWriter, r *http.Request) {
	list, err := s.learningUC.Programs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []programView `json:"data"`
	}{Data: toProgramViews(list)})
}

func (s *Server) handleMyPrograms(w http.ResponseWriter, r *http.Request) {
	list, err := s.learningUC.MyPrograms(r.Context(), SessionFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]enrollmentView, 0, len(list))
	for _, e := range list {
		out = append(out, toEnrollmentView(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []enrollmentView `json:"data"`
	}{Data: out})
}

type progressRequest struct {
	Completed bool `json:"completed"`
	TimeSpent int  `json:"time_spent" validate:"gte=0"`
}

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.learningUC.RecordProgress(r.Context(),
		SessionFrom(r.Context()).UserID,
		chi.URLParam(r, "programID"),
		chi.URLParam(r, "lessonID"),
		req.Completed, req.TimeSpent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentView(e))
}

type lessonView struct {
	LessonID  string `json:"lesson_id"`
	Completed bool   `json:"completed"`
	TimeSpent int    `json:"time_spent"`
}

func (s *Server) handleLessonProgress(w http.ResponseWriter, r *http.Request) {
	list, err := s.learningUC.LessonProgress(r.Context(), SessionFrom(r.Context()).UserID, chi.URLParam(r, "programID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]lessonView, 0, len(list))
	for _, lp := range list {
		out = append(out, lessonView{LessonID: lp.LessonID, Completed: lp.Completed, TimeSpent: lp.TimeSpent})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []lessonView `json:"data"`
	}{Data: out})
}

type saveRequest struct {
	ContentType  string `json:"content_type" validate:"required,oneof=article ebook video"`
	ContentID    string `json:"content_id" validate:"required,max=120"`
	ContentTitle string `json:"content_title" validate:"max=200"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.learningUC.SaveContent(r.Context(), SessionFrom(r.Context()).UserID,
		model.ContentType(req.ContentType), req.ContentID, req.ContentTitle)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavedView(saved))
}

func (s *Server) handleSavedList(w http.ResponseWriter, r *http.Request) {
	list, err := s.learningUC.SavedContent(r.Context(), SessionFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]savedView, 0, len(list))
	for _, sc := range list {
		out = append(out, toSavedView(sc))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []savedView `json:"data"`
	}{Data: out})
}

func (s *Server) handleUnsave(w http.ResponseWriter, r *http.Request) {
	err := s.learningUC.RemoveSavedContent(r.Context(), SessionFrom(r.Context()).UserID,
		model.ContentType(chi.URLParam(r, "contentType")), chi.URLParam(r, "contentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
