package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hartwell/jobpilot/core"
	"github.com/hartwell/jobpilot/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	// Tool behavior is user-scoped but the catalog is not; build against a
	// throwaway user to list it.
	registry, err := s.buildRegistry(0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	schemas := registry.Schemas()
	result := make([]ToolInfo, 0, len(schemas))
	for _, schema := range schemas {
		result = append(result, ToolInfo{
			Name:        schema.Name,
			Description: schema.Description,
			Parameters:  schema.Parameters,
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	var entry *sessionEntry
	if req.SessionID != "" {
		e, err := s.sessions.get(req.SessionID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if e.session.UserID() != req.UserID {
			writeError(w, http.StatusNotFound, core.ErrSessionNotFound)
			return
		}
		entry = e
	} else {
		session, err := s.newSession(req.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		entry, err = s.sessions.get(session.ID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	reply, err := entry.dispatcher.HandleMessage(ctx, entry.session, req.Message)
	if err != nil {
		writeError(w, chatStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID: entry.session.ID(),
		Reply:     reply,
	})
}

// chatStatus maps dispatcher failures onto HTTP status codes.
func chatStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrContextTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Snapshot: entry.session.Snapshot()})
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	entry.session.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	s.sessions.remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleJobList(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	jobs, err := s.stores.Jobs.ListJobs(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID <= 0 || req.CompanyName == "" || req.JobTitle == "" {
		writeError(w, http.StatusBadRequest, errors.New("user_id, company_name and job_title are required"))
		return
	}

	status := req.Status
	if status == "" {
		status = "Not applied"
	}
	job := store.JobRecord{
		UserID:         req.UserID,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ApplicationURL: req.ApplicationURL,
		Status:         status,
		Location:       req.Location,
		Salary:         req.Salary,
		Notes:          req.Notes,
		AddedAt:        time.Now(),
	}

	id, err := s.stores.Jobs.CreateJob(r.Context(), job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	job.ID = id
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	jobID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job, err := s.stores.Jobs.GetJob(r.Context(), userID, jobID)
	if err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, errors.New("status is required"))
		return
	}

	if err := s.stores.Jobs.UpdateJobStatus(r.Context(), req.UserID, jobID, req.Status); err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	jobID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.stores.Jobs.DeleteJob(r.Context(), userID, jobID); err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDocumentList(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	docs, err := s.stores.Documents.ListDocuments(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocumentCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID <= 0 || req.Name == "" || req.Kind == "" {
		writeError(w, http.StatusBadRequest, errors.New("user_id, name and kind are required"))
		return
	}

	id, err := s.stores.Documents.SaveDocument(r.Context(), req.UserID, req.Kind, req.Name, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDocumentPrefer(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	docID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.stores.Documents.SetPreferredResume(r.Context(), userID, docID); err != nil {
		writeError(w, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGoalsGet(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	goals, err := s.stores.Goals.LatestGoals(r.Context(), userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"goals": goals})
}

func (s *Server) handleGoalsSave(w http.ResponseWriter, r *http.Request) {
	var req SaveGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	if err := s.stores.Goals.SaveGoals(r.Context(), req.UserID, req.Goals); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeError(w, http.StatusNotImplemented, errors.New("import is not configured"))
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID <= 0 || req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("user_id and url are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	job, err := s.importer.Import(ctx, req.UserID, req.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportResponse{Job: job})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Flush())
}

func queryUserID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return 0, errors.New("user_id query parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("user_id must be a positive integer")
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

func storeStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
