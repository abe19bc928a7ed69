package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/datasvc/client"
)

func ExampleBuild() {
	conn, err := client.Build(
		client.WithBasePath("https://api.example.com/v1"),
		client.WithUserAgent("example/1.0"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(conn.Headers().Get("Content-Type"))
	// Output: application/json
}

func ExampleBuilder_JSON() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"alice"}`)
	}))
	defer ts.Close()

	conn, _ := client.Build(client.WithBasePath(ts.URL))

	var user struct{ Name string }
	if _, err := conn.Get("users/42").JSON(context.Background(), client.WithDestination(&user)); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(user.Name)
	// Output: alice
}

func ExampleBuilder_JSON_empty() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	conn, _ := client.Build(client.WithBasePath(ts.URL))

	res, err := conn.Delete("users/42").JSON(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(res.Empty(), res.StatusText())
	// Output: true No Content
}

func ExampleConnection_SetRedirectURL() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	conn, _ := client.Build(client.WithBasePath(ts.URL))
	conn.SetRedirectURL("https://example.com/login")

	_, err := conn.Get("me").JSON(context.Background())

	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		fmt.Println(respErr.StatusCode, errors.Is(err, client.ErrUnauthorized))
	}
	fmt.Println(conn.Location().Href())
	// Output:
	// 401 true
	// https://example.com/login
}

func ExampleBuilder_File() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", "attachment; filename=export.csv")
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "id,name\n1,alice\n")
	}))
	defer ts.Close()

	conn, _ := client.Build(client.WithBasePath(ts.URL))

	f, err := conn.Get("export").File(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(f.Filename, f.ContentType, len(f.Blob))
	// Output: export.csv text/csv 16
}
