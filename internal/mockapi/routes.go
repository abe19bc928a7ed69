package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "session"

// New returns an App serving store with request logging, error
// translation and panic recovery installed.
func New(store *Store, optFns ...AppOption) *App {
	app := NewApp(optFns...)
	app.Use(Logger(app.logger), Errors(app.logger), Panics())

	a := api{store: store}

	app.Get("/users", a.listUsers)
	app.Get("/users/{id}", a.getUser)
	app.Post("/users", a.createUser)
	app.Put("/users/{id}", a.replaceUser)
	app.Patch("/users/{id}", a.updateUser)
	app.Delete("/users/{id}", a.deleteUser)

	app.Post("/session", a.login)
	app.Delete("/session", a.logout)
	app.Get("/me", a.me, requireSession(store))
	app.Get("/reports/{name}", a.report, requireSession(store))

	app.Get("/query", a.query)
	app.Get("/status/{code}", a.status)

	return app
}

type api struct {
	store *Store
}

type login struct {
	Name string `json:"name" validate:"required"`
}

func (a api) listUsers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return RespondJSON(ctx, w, http.StatusOK, a.store.Users())
}

func (a api) getUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramInt(r, "id")
	if err != nil {
		return err
	}

	u, ok := a.store.User(id)
	if !ok {
		return errUserNotFound(id)
	}

	return RespondJSON(ctx, w, http.StatusOK, u)
}

func (a api) createUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nu NewUser
	if err := Decode(r, &nu); err != nil {
		return err
	}

	return RespondJSON(ctx, w, http.StatusCreated, a.store.AddUser(nu))
}

func (a api) replaceUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramInt(r, "id")
	if err != nil {
		return err
	}

	var nu NewUser
	if err := Decode(r, &nu); err != nil {
		return err
	}

	u, ok := a.store.ReplaceUser(id, nu)
	if !ok {
		return errUserNotFound(id)
	}

	return RespondJSON(ctx, w, http.StatusOK, u)
}

func (a api) updateUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramInt(r, "id")
	if err != nil {
		return err
	}

	var uu UpdateUser
	if err := Decode(r, &uu); err != nil {
		return err
	}

	u, ok := a.store.UpdateUser(id, uu)
	if !ok {
		return errUserNotFound(id)
	}

	return RespondJSON(ctx, w, http.StatusOK, u)
}

func (a api) deleteUser(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramInt(r, "id")
	if err != nil {
		return err
	}

	if !a.store.DeleteUser(id) {
		return errUserNotFound(id)
	}

	return RespondJSON(ctx, w, http.StatusNoContent, nil)
}

func (a api) login(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var l login
	if err := Decode(r, &l); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    a.store.StartSession(l.Name),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return RespondJSON(ctx, w, http.StatusNoContent, nil)
}

func (a api) logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(SessionCookie); err == nil {
		a.store.EndSession(c.Value)
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Path: "/", MaxAge: -1})

	return RespondJSON(ctx, w, http.StatusNoContent, nil)
}

func (a api) me(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return RespondJSON(ctx, w, http.StatusOK, map[string]string{"name": GetValues(ctx).User})
}

func (a api) report(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	name := r.PathValue("name")

	rep, ok := a.store.Report(name)
	if !ok {
		return NewError(http.StatusNotFound, fmt.Errorf("report[%s] not found", name))
	}

	return RespondFile(ctx, w, rep.Filename, rep.ContentType, rep.Blob)
}

// query echoes the query string, so callers can see cache-busting
// parameters arrive.
func (a api) query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return RespondJSON(ctx, w, http.StatusOK, r.URL.Query())
}

// status answers with the requested status code.
func (a api) status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	code, err := paramInt(r, "code")
	if err != nil {
		return err
	}
	if code < 200 || code > 599 {
		return NewError(http.StatusBadRequest, fmt.Errorf("status[%d] out of range", code))
	}

	return RespondJSON(ctx, w, code, map[string]int{"code": code})
}

// requireSession rejects requests without a valid session cookie with
// 401 Unauthorized.
func requireSession(store *Store) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			c, err := r.Cookie(SessionCookie)
			if err != nil {
				return NewError(http.StatusUnauthorized, errors.New("not signed in"))
			}

			name, ok := store.Session(c.Value)
			if !ok {
				return NewError(http.StatusUnauthorized, errors.New("session expired"))
			}
			GetValues(ctx).User = name

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func paramInt(r *http.Request, key string) (int, error) {
	val := r.PathValue(key)

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, NewError(http.StatusBadRequest, fmt.Errorf("path param[%s] must be integer: %w", key, err))
	}

	return v, nil
}

func errUserNotFound(id int) error {
	return NewError(http.StatusNotFound, fmt.Errorf("user[%d] not found", id))
}
