package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the JSON API handlers.
type Handlers struct {
	Auth        *AuthHandler
	Tasks       *TaskHandler
	Comments    *CommentHandler
	Attachments *AttachmentHandler
	Activity    *ActivityHandler
}

// Mount registers the /api routes and the public /uploads route on r.
// authenticate guards everything except the auth endpoints; loginLimit, if
// non-nil, wraps login.
func (h Handlers) Mount(r chi.Router, authenticate, loginLimit func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/refresh", h.Auth.RefreshToken)
		if loginLimit != nil {
			r.With(loginLimit).Post("/auth/login", h.Auth.Login)
		} else {
			r.Post("/auth/login", h.Auth.Login)
		}

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/tasks", h.Tasks.ListTasks)
			r.Post("/tasks", h.Tasks.CreateTask)
			r.Get("/tasks/{id}", h.Tasks.GetTask)
			r.Put("/tasks/{id}", h.Tasks.UpdateTask)
			r.Delete("/tasks/{id}", h.Tasks.DeleteTask)

			r.Get("/comments/{taskId}", h.Comments.ListComments)
			r.Post("/comments/{taskId}", h.Comments.AddComment)

			r.Get("/attachments/{taskId}", h.Attachments.ListAttachments)
			r.Post("/attachments/{taskId}", h.Attachments.Upload)

			r.Get("/activity/{taskId}", h.Activity.ListActivity)
		})
	})

	r.Get("/uploads/{name}", h.Attachments.ServeUpload)
	r.Head("/uploads/{name}", h.Attachments.ServeUpload)
}
