package server

import (
	"context"
	"time"

	"github.com/fritter-app/fritter/internal/models"
)

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FreetResponse is the public shape of a freet, with the author resolved to
// a username.
type FreetResponse struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Content     string `json:"content"`
	InGroup     bool   `json:"inGroup"`
	DateCreated string `json:"dateCreated"`
}

// GroupResponse is the public shape of a group. Administrator and member sets
// are returned as usernames, never raw ids.
type GroupResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Administrators []string        `json:"administrators"`
	Members        []string        `json:"members"`
	Posts          []FreetResponse `json:"posts"`
	IsPrivate      bool            `json:"isPrivate"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username}
}

func freetResponse(freet *models.Freet, author string) FreetResponse {
	return FreetResponse{
		ID:          freet.ID,
		Author:      author,
		Content:     freet.Content,
		InGroup:     freet.InGroup,
		DateCreated: time.Unix(freet.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

// freetResponseFor shapes a single freet, resolving its author's username.
func (s *Server) freetResponseFor(ctx context.Context, freet *models.Freet) (FreetResponse, error) {
	users, err := s.store.GetUsersByIDs(ctx, []string{freet.AuthorID})
	if err != nil {
		return FreetResponse{}, err
	}
	author := freet.AuthorID
	if user, ok := users[freet.AuthorID]; ok {
		author = user.Username
	}
	return freetResponse(freet, author), nil
}

// groupResponseFor shapes a group, resolving member and admin ids to
// usernames and post ids to freet summaries. Administrators are a subset of
// members, so one user lookup covers both sets.
func (s *Server) groupResponseFor(ctx context.Context, group *models.Group) (*GroupResponse, error) {
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, err
	}

	resp := &GroupResponse{
		ID:             group.ID,
		Name:           group.Name,
		Administrators: make([]string, 0, len(group.Administrators)),
		Members:        make([]string, 0, len(group.Members)),
		Posts:          make([]FreetResponse, 0, len(group.Posts)),
		IsPrivate:      group.IsPrivate,
	}
	for _, id := range group.Administrators {
		if user, ok := users[id]; ok {
			resp.Administrators = append(resp.Administrators, user.Username)
		}
	}
	for _, id := range group.Members {
		if user, ok := users[id]; ok {
			resp.Members = append(resp.Members, user.Username)
		}
	}

	var authorIDs []string
	freets := make([]*models.Freet, 0, len(group.Posts))
	for _, id := range group.Posts {
		freet, err := s.store.GetFreet(ctx, id)
		if err != nil {
			return nil, err
		}
		freets = append(freets, freet)
		authorIDs = append(authorIDs, freet.AuthorID)
	}
	authors, err := s.store.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	for _, freet := range freets {
		author := freet.AuthorID
		if user, ok := authors[freet.AuthorID]; ok {
			author = user.Username
		}
		resp.Posts = append(resp.Posts, freetResponse(freet, author))
	}

	return resp, nil
}

// groupResponsesFor shapes a list of groups.
func (s *Server) groupResponsesFor(ctx context.Context, groups []*models.Group) ([]*GroupResponse, error) {
	out := make([]*GroupResponse, 0, len(groups))
	for _, group := range groups {
		resp, err := s.groupResponseFor(ctx, group)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}
