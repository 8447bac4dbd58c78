package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

type createGroupRequest struct {
	Name string `json:"name"`
	// IsPrivate is the literal string "true" or "false"; blank means public.
	IsPrivate string `json:"isPrivate"`
}

type memberRequest struct {
	// UserID is the user to add or promote. Blank on the member route means
	// the caller joins themselves.
	UserID string `json:"userId"`
}

type postRequest struct {
	FreetID string `json:"freetId"`
}

// handleListMemberGroups returns the groups the caller belongs to.
// GET /api/groups/member
func (s *Server) handleListMemberGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListByMember(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponsesFor(r.Context(), groups)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListAdminGroups returns the groups the caller administers.
// GET /api/groups/admin
func (s *Server) handleListAdminGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListByAdmin(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponsesFor(r.Context(), groups)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetGroup returns a group's detail if visible to the caller.
// GET /api/groups/{groupID}
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), callerFrom(r), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateGroup creates a group with the caller as founder.
// POST /api/groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.Create(r.Context(), callerFrom(r), req.Name, req.IsPrivate)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleDeleteGroup deletes a group and every freet it owns.
// DELETE /api/groups/{groupID}
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your group and all its freets were deleted successfully."})
}

// handleSetGroupPrivacy flips a group's privacy flag.
// PATCH /api/groups/{groupID}?isPrivate=true|false
func (s *Server) handleSetGroupPrivacy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	group, err := s.groups.SetPrivacy(
		r.Context(),
		callerFrom(r),
		chi.URLParam(r, "groupID"),
		query.Get("isPrivate"),
		hasQueryParam(query, "isPrivate"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddGroupMember adds a member to a group. With no userId in the body
// the caller self-joins (public groups only); otherwise the target user is
// added, which requires admin rights when the group is private.
// PATCH /api/groups/{groupID}/member
func (s *Server) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.AddMember(r.Context(), callerFrom(r), chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePromoteGroupAdmin promotes a member to administrator.
// PATCH /api/groups/{groupID}/admin
func (s *Server) handlePromoteGroupAdmin(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.PromoteAdmin(r.Context(), callerFrom(r), chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAttachGroupPost shares a freet into a group.
// PATCH /api/groups/{groupID}/post
func (s *Server) handleAttachGroupPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.AttachPost(r.Context(), callerFrom(r), chi.URLParam(r, "groupID"), req.FreetID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDetachGroupPost removes a freet from a group and deletes it.
// PATCH /api/groups/{groupID}/post/remove
func (s *Server) handleDetachGroupPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.DetachPost(r.Context(), callerFrom(r), chi.URLParam(r, "groupID"), req.FreetID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.groupResponseFor(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// hasQueryParam reports whether the parameter appeared in the query string
// at all, even with an empty value.
func hasQueryParam(query url.Values, key string) bool {
	_, ok := query[key]
	return ok
}
