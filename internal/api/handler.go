package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	memerr "github.com/amterp/memmap/internal/errors"
	"github.com/amterp/memmap/internal/model"
	"github.com/amterp/memmap/internal/service"
)

// Request body limits.
const (
	maxJSONBody   = 8 << 20
	maxUploadBody = 32 << 20
)

// Publisher receives domain events for connected clients.
type Publisher interface {
	Publish(msgType string, payload any)
}

// Handler contains all HTTP handlers for the API.
//
// The /api/users, /api/memories and /api/upload routes keep the request and
// response shapes of the original browser client. New functionality lives
// under /api/v1.
type Handler struct {
	app       *AppContext
	publisher Publisher
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(app *AppContext) (*Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}
	return &Handler{app: app}, nil
}

// SetPublisher sets where color assignments and new memories are announced.
func (h *Handler) SetPublisher(p Publisher) {
	h.publisher = p
}

func (h *Handler) publish(msgType string, payload any) {
	if h.publisher != nil {
		h.publisher.Publish(msgType, payload)
	}
}

// RegisterRoutes sets up all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Legacy client routes
	mux.HandleFunc("POST /api/users/save", h.SaveUser)
	mux.HandleFunc("POST /api/users/save-all", h.SaveAllUsers)
	mux.HandleFunc("GET /api/users/list", h.ListUsers)
	mux.HandleFunc("GET /api/users/{id}", h.GetUser)
	mux.HandleFunc("POST /api/memories/save-all", h.SaveAllMemories)
	mux.HandleFunc("GET /api/memories/list", h.ListMemories)
	mux.HandleFunc("GET /api/memories/{id}", h.GetMemory)
	mux.HandleFunc("POST /api/upload/image", h.UploadImage)
	mux.HandleFunc("POST /api/upload/trajectory", h.UploadTrajectory)

	// Contributors and colors
	mux.HandleFunc("POST /api/v1/contributors", h.RegisterContributor)
	mux.HandleFunc("GET /api/v1/contributors/{email}", h.GetUser)
	mux.HandleFunc("GET /api/v1/contributors/{email}/color", h.GetContributorColor)
	mux.HandleFunc("GET /api/v1/colors", h.ListColors)
	mux.HandleFunc("GET /api/v1/colors/report", h.ColorReport)

	// Members and memories
	mux.HandleFunc("GET /api/v1/members", h.ListMembers)
	mux.HandleFunc("GET /api/v1/members/{id}", h.GetMember)
	mux.HandleFunc("GET /api/v1/members/{id}/memories", h.ListMemberMemories)
	mux.HandleFunc("POST /api/v1/memories", h.CreateMemory)
	mux.HandleFunc("DELETE /api/v1/memories/{id}", h.DeleteMemory)
	mux.HandleFunc("POST /api/v1/contributions/refresh", h.RefreshContributions)
}

// decodeBody decodes a JSON request body of at most limit bytes. On
// failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// --- Legacy contributor handlers ---

// SaveUserResponse acknowledges a single contributor save.
type SaveUserResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

// SaveUser stores one contributor record sent by the client.
func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var c model.Contributor
	if !decodeBody(w, r, maxJSONBody, &c) {
		return
	}

	saved, err := h.app.Contributors.Save(r.Context(), &c)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, SaveUserResponse{
		Status:  statusSuccess,
		Message: "User data saved",
		Color:   saved.Color,
	})
}

// SaveAllUsers stores a {id: record} map of contributors.
func (h *Handler) SaveAllUsers(w http.ResponseWriter, r *http.Request) {
	var byID map[string]*model.Contributor
	if !decodeBody(w, r, maxJSONBody, &byID) {
		return
	}

	records := make([]*model.Contributor, 0, len(byID))
	for id, c := range byID {
		if c == nil {
			continue
		}
		if c.ID == "" {
			c.ID = id
		}
		records = append(records, c)
	}

	if err := h.app.Contributors.SaveAll(r.Context(), records); err != nil {
		Error(w, err)
		return
	}
	Success(w, fmt.Sprintf("Saved %d users", len(records)))
}

// ListUsers returns every contributor keyed by ID.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.app.Contributors.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	out := make(map[string]*model.Contributor, len(cs))
	for _, c := range cs {
		out[c.ID] = c
	}
	JSON(w, http.StatusOK, out)
}

// GetUser returns one contributor. Serves both /api/users/{id} and
// /api/v1/contributors/{email}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		id = r.PathValue("email")
	}

	c, err := h.app.Contributors.Lookup(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, c)
}

// --- Legacy memory handlers ---

// SaveAllMemories stores a {id: memory} map.
func (h *Handler) SaveAllMemories(w http.ResponseWriter, r *http.Request) {
	var byID map[string]*model.Memory
	if !decodeBody(w, r, maxJSONBody, &byID) {
		return
	}

	ms := make([]*model.Memory, 0, len(byID))
	for id, m := range byID {
		if m == nil {
			continue
		}
		if m.ID == "" {
			m.ID = id
		}
		ms = append(ms, m)
	}

	if err := h.app.Memories.SaveAll(r.Context(), ms); err != nil {
		Error(w, err)
		return
	}
	Success(w, fmt.Sprintf("Saved %d memories", len(ms)))
}

// ListMemories returns every memory keyed by ID.
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	ms, err := h.app.Memories.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	out := make(map[string]*model.Memory, len(ms))
	for _, m := range ms {
		out[m.ID] = m
	}
	JSON(w, http.StatusOK, out)
}

// GetMemory returns one memory.
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.Memories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, m)
}

// --- Uploads ---

// UploadRequest is the JSON body of both upload routes. For images Data
// is a base64 string or data URL; for trajectories it is any JSON value.
type UploadRequest struct {
	Data      json.RawMessage `json:"data"`
	Extension string          `json:"extension"`
}

// UploadResponse acknowledges a stored upload.
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// UploadImage stores a base64-encoded image.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if !decodeBody(w, r, maxUploadBody, &req) {
		return
	}

	var data string
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			BadRequest(w, "image data must be a string")
			return
		}
	}

	res, err := h.app.Uploads.SaveImage(r.Context(), data, req.Extension)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, UploadResponse{Status: statusSuccess, Filename: res.Filename, Path: res.Path})
}

// UploadTrajectory stores a trajectory document.
func (h *Handler) UploadTrajectory(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if !decodeBody(w, r, maxUploadBody, &req) {
		return
	}

	res, err := h.app.Uploads.SaveTrajectory(r.Context(), req.Data, req.Extension)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, UploadResponse{Status: statusSuccess, Filename: res.Filename, Path: res.Path})
}

// --- Contributors and colors ---

// RegisterRequest is the JSON body for registering a contributor.
type RegisterRequest struct {
	Email      string         `json:"email"`
	Name       string         `json:"name,omitempty"`
	Role       string         `json:"role,omitempty"`
	Department string         `json:"department,omitempty"`
	Biography  string         `json:"biography,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// ColorAssignedEvent is published when a contributor's color is settled.
type ColorAssignedEvent struct {
	Identity string `json:"identity"`
	Color    string `json:"color"`
}

// RegisterContributor registers a contributor and assigns their color.
func (h *Handler) RegisterContributor(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, maxJSONBody, &req) {
		return
	}

	c, err := h.app.Contributors.Register(r.Context(), service.RegisterInput{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Biography:  req.Biography,
		Extra:      req.Extra,
	})
	if err != nil {
		Error(w, err)
		return
	}

	h.publish(MessageColorAssigned, ColorAssignedEvent{Identity: c.Identity(), Color: c.Color})
	JSON(w, http.StatusCreated, c)
}

// ColorResponse is the color of one identity.
type ColorResponse struct {
	Identity string `json:"identity"`
	Color    string `json:"color"`
	Assigned bool   `json:"assigned"`
}

// GetContributorColor returns an identity's color without assigning one.
func (h *Handler) GetContributorColor(w http.ResponseWriter, r *http.Request) {
	identity := r.PathValue("email")
	c, assigned := h.app.Contributors.Color(identity)
	JSON(w, http.StatusOK, ColorResponse{Identity: identity, Color: c, Assigned: assigned})
}

// ColorsResponse describes the palette and every assignment.
type ColorsResponse struct {
	Palette      []string          `json:"palette"`
	DefaultColor string            `json:"default_color"`
	Assignments  map[string]string `json:"assignments"`
	Cursor       int               `json:"cursor"`
}

// ListColors returns the palette and the assignment table.
func (h *Handler) ListColors(w http.ResponseWriter, r *http.Request) {
	state := h.app.Engine.Snapshot()
	JSON(w, http.StatusOK, ColorsResponse{
		Palette:      h.app.Engine.Palette().Colors(),
		DefaultColor: h.app.Engine.DefaultColor(),
		Assignments:  state.Assignments,
		Cursor:       state.Cursor,
	})
}

// ColorReport runs the color diagnostics.
func (h *Handler) ColorReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.ColorDoctor.Diagnose(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, report)
}

// --- Members and memories ---

// ListMembers returns the configured members, optionally filtered by role.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members := h.app.Members.List()
	if role := r.URL.Query().Get("role"); role != "" {
		members = h.app.Members.ByRole(role)
	}
	JSON(w, http.StatusOK, map[string]any{"members": members})
}

// GetMember returns one member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.Members.Get(r.PathValue("id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, m)
}

// ListMemberMemories returns the memories left for a member.
func (h *Handler) ListMemberMemories(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if h.app.Members.Len() > 0 && !h.app.Members.Exists(id) {
		Error(w, memerr.MemberNotFound(id))
		return
	}

	ms, err := h.app.Memories.ForTarget(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"memories": ms})
}

// CreateMemoryRequest is the JSON body for adding a memory.
type CreateMemoryRequest struct {
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	TargetUserID     string         `json:"targetUserId"`
	ContributorName  string         `json:"contributorName,omitempty"`
	ContributorEmail string         `json:"contributorEmail,omitempty"`
	Coordinates      []float64      `json:"coordinates"`
	Type             string         `json:"type,omitempty"`
	Media            model.Media    `json:"media"`
	Tags             []string       `json:"tags,omitempty"`
	IsPublic         bool           `json:"isPublic"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// CreateMemory adds a memory.
func (h *Handler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if !decodeBody(w, r, maxJSONBody, &req) {
		return
	}

	m, err := h.app.Memories.Add(r.Context(), service.AddMemoryInput{
		Title:            req.Title,
		Description:      req.Description,
		TargetUserID:     req.TargetUserID,
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
		Coordinates:      req.Coordinates,
		Type:             req.Type,
		Media:            req.Media,
		Tags:             req.Tags,
		IsPublic:         req.IsPublic,
		Extra:            req.Extra,
	})
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, m)
}

// DeleteMemory removes a memory.
func (h *Handler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Memories.Delete(r.Context(), r.PathValue("id")); err != nil {
		Error(w, err)
		return
	}
	Success(w, "Memory deleted")
}

// RefreshContributions recounts every contributor's memories.
func (h *Handler) RefreshContributions(w http.ResponseWriter, r *http.Request) {
	n, err := h.app.Memories.RefreshContributions(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]int{"updated": n})
}
