package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const simulatorPassword = "testpassword123"

func uniqueName(base string) string {
	return fmt.Sprintf("%s_%d", base, time.Now().UnixNano()%1000000)
}

// RunSmoke walks the session lifecycle against a live server and fails on
// the first deviation.
func RunSmoke(client *APIClient, out io.Writer) error {
	username := uniqueName("smoke")

	fmt.Fprint(out, "Registering user... ")
	registered, err := client.Register(username, simulatorPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "OK (%s)\n", registered.UserID)

	fmt.Fprint(out, "Logging in... ")
	loggedIn, err := client.Login(username, simulatorPassword)
	if err != nil {
		return err
	}
	if loggedIn.Token == registered.Token {
		return errors.New("login reused the registration token")
	}
	fmt.Fprintln(out, "OK (fresh token)")

	fmt.Fprint(out, "Calling protected route... ")
	if _, err := client.ListPosts(loggedIn.Token); err != nil {
		return err
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprint(out, "Logging out... ")
	if err := client.Logout(loggedIn.Token); err != nil {
		return err
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprint(out, "Reusing revoked token... ")
	_, err = client.ListPosts(loggedIn.Token)
	if err := expectStatus(err, http.StatusUnauthorized); err != nil {
		return err
	}
	fmt.Fprintln(out, "OK (401)")

	fmt.Fprint(out, "Comparing invalid credential responses... ")
	_, wrongPassword := client.Login(username, "wrong-"+simulatorPassword)
	_, unknownUser := client.Login(uniqueName("ghost"), simulatorPassword)
	var a, b *StatusError
	if !errors.As(wrongPassword, &a) || !errors.As(unknownUser, &b) {
		return fmt.Errorf("expected rejected logins, got %v and %v", wrongPassword, unknownUser)
	}
	if a.Status != http.StatusUnprocessableEntity || *a != *b {
		return fmt.Errorf("invalid credential responses differ: %v vs %v", a, b)
	}
	fmt.Fprintln(out, "OK (identical)")

	return nil
}

// Populate registers count users that each publish one post.
func Populate(client *APIClient, count int, out io.Writer) error {
	for i := 1; i <= count; i++ {
		username := uniqueName(fmt.Sprintf("writer%d", i))
		auth, err := client.Register(username, simulatorPassword)
		if err != nil {
			return err
		}
		post, err := client.CreatePost(auth.Token,
			fmt.Sprintf("Post %d from %s", i, username),
			"Generated by the simulator.")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  [%d/%d] %s published %s\n", i, count, username, post.ID)
	}
	return nil
}

func expectStatus(err error, status int) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("expected status %d, got %v", status, err)
	}
	if statusErr.Status != status {
		return fmt.Errorf("expected status %d, got %d", status, statusErr.Status)
	}
	return nil
}
