package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/finplanner/internal/export"
	"github.com/sells-group/finplanner/internal/model"
	"github.com/sells-group/finplanner/internal/service"
)

type handler struct {
	svc *service.PlanService
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) previewPlan(w http.ResponseWriter, r *http.Request) {
	var in model.PlanInput
	if !decodeJSON(w, r, &in) {
		return
	}
	plan, err := h.svc.Preview(r.Context(), in.Profile, in.Goals)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Store().GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Store().GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) putProfile(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	saved, err := h.svc.SaveProfile(r.Context(), chi.URLParam(r, "userID"), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.Store().ListGoals(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var g model.Goal
	if !decodeJSON(w, r, &g) {
		return
	}
	created, err := h.svc.AddGoal(r.Context(), chi.URLParam(r, "userID"), g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	var g model.Goal
	if !decodeJSON(w, r, &g) {
		return
	}
	g.ID = chi.URLParam(r, "goalID")
	if err := h.svc.UpdateGoal(r.Context(), chi.URLParam(r, "userID"), g); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Store().DeleteGoal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "goalID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) generatePlan(w http.ResponseWriter, r *http.Request) {
	withNote, _ := strconv.ParseBool(r.URL.Query().Get("note"))
	rec, err := h.svc.Generate(r.Context(), chi.URLParam(r, "userID"), withNote)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	plans, err := h.svc.History(r.Context(), chi.URLParam(r, "userID"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *handler) getPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "planID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) exportPlan(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "planID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rec.Result, nil); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(rec.CreatedAt, format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
