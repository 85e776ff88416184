package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/biuromax/backend/internal/i18n"
	"github.com/biuromax/backend/internal/model"
	"github.com/biuromax/backend/internal/repository"
	"github.com/biuromax/backend/internal/service"
)

// FormHandler handles form submissions and the admin submission listing.
type FormHandler struct {
	formService service.FormService
	submissions repository.SubmissionRepository
}

// NewFormHandler creates a FormHandler with the given service and repository.
func NewFormHandler(formService service.FormService, submissions repository.SubmissionRepository) *FormHandler {
	return &FormHandler{formService: formService, submissions: submissions}
}

// Submit handles POST /api/forms/{formType}. The payload may be
// form-encoded or JSON; it is always parsed into a flat key-value map, even
// when empty, and the orchestrator decides the outcome.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ftStr := r.PathValue("formType")
	if !model.ValidFormType(ftStr) {
		writeError(w, http.StatusNotFound, "unknown_form")
		return
	}

	data := parsePayload(r)
	lang := detectLanguage(r, data["language"])
	delete(data, "language")

	sessionID := data["sessionId"]
	delete(data, "sessionId")

	result := h.formService.Submit(r.Context(), service.SubmitRequest{
		FormType:  model.FormType(ftStr),
		Data:      data,
		IP:        clientIP(r),
		SessionID: sessionID,
		Language:  lang,
	})

	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// adminListResponse is the JSON response for GET /api/admin/submissions.
type adminListResponse struct {
	Submissions []*model.FormSubmission `json:"submissions"`
}

// AdminList handles GET /api/admin/submissions. Auth is enforced by the
// admin gate middleware. Supports query params: formType, status, limit,
// offset.
func (h *FormHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	opts := model.SubmissionListOptions{
		FormType: r.URL.Query().Get("formType"),
		Status:   r.URL.Query().Get("status"),
		Limit:    20,
		Offset:   0,
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	subs, err := h.submissions.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if subs == nil {
		subs = []*model.FormSubmission{}
	}
	writeJSON(w, http.StatusOK, adminListResponse{Submissions: subs})
}

// parsePayload normalizes the request body into a flat string map. Malformed
// bodies yield an empty map; the validation layer rejects those with field
// errors instead of an opaque parse failure.
func parsePayload(r *http.Request) map[string]string {
	data := make(map[string]string)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			for k, v := range raw {
				switch val := v.(type) {
				case string:
					data[k] = val
				case bool:
					data[k] = strconv.FormatBool(val)
				case float64:
					data[k] = strconv.FormatFloat(val, 'f', -1, 64)
				}
			}
		}
		return data
	}

	if err := r.ParseForm(); err == nil {
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				data[k] = vs[0]
			}
		}
	}
	return data
}

// detectLanguage feeds the request's language signals into the single i18n
// fallback chain: explicit field > lang cookie > Accept-Language > Polish.
func detectLanguage(r *http.Request, explicit string) i18n.Language {
	var cookie string
	if c, err := r.Cookie("lang"); err == nil {
		cookie = c.Value
	}
	return i18n.Detect(explicit, cookie, r.Header.Get("Accept-Language"))
}
