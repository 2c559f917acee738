package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/atinyakov/profilepanel/internal/client/profile"
	"github.com/atinyakov/profilepanel/internal/client/session"
	"github.com/atinyakov/profilepanel/internal/models"
)

// editable lists the draft fields the shell accepts in "set".
var editable = map[string]bool{
	models.FieldUsername: true,
	models.FieldEmail:    true,
	models.FieldPassword: true,
}

type shell struct {
	panel   *profile.Panel
	session *session.Store
	out     io.Writer
}

// run reads commands from in until EOF or "exit".
func (s *shell) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(s.out, "profile> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}
		if !s.exec(ctx, args) {
			return
		}
	}
}

// exec runs a single command and reports whether the shell should continue.
func (s *shell) exec(ctx context.Context, args []string) bool {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, "Available commands: help, show, image <path>, set <field> <value>, submit, wait, exit")
	case "show":
		s.show()
	case "image":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: image <path>")
			return true
		}
		s.selectImage(ctx, strings.Join(args[1:], " "))
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: set <username|email|password> <value>")
			return true
		}
		if !editable[args[1]] {
			fmt.Fprintf(s.out, "Unknown field %q\n", args[1])
			return true
		}
		s.panel.EditField(args[1], strings.Join(args[2:], " "))
	case "submit":
		out, _ := s.panel.Submit(ctx)
		if out.Success != "" {
			fmt.Fprintln(s.out, out.Success)
		} else {
			fmt.Fprintln(s.out, out.Error)
		}
	case "wait":
		s.panel.Wait()
		s.showUpload()
	case "exit":
		fmt.Fprintln(s.out, "Bye")
		return false
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true
}

func (s *shell) selectImage(ctx context.Context, path string) {
	file, err := loadImage(path)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	img, err := s.panel.SelectImage(ctx, file)
	var verr *profile.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(s.out, verr.Message)
	case err != nil:
		fmt.Fprintln(s.out, err)
	default:
		fmt.Fprintf(s.out, "Uploading %s (%d bytes)\n", img.Name, img.Size)
	}
}

func (s *shell) show() {
	user := s.session.CurrentUser()
	fmt.Fprintf(s.out, "User:    %s <%s> (%s)\n", user.Username, user.Email, user.ID)
	fmt.Fprintf(s.out, "Picture: %s\n", s.panel.ImageURL())
	s.showUpload()

	draft := s.panel.Draft()
	keys := make([]string, 0, len(draft))
	for k := range draft {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := draft[k]
		if k == models.FieldPassword {
			v = "********"
		}
		fmt.Fprintf(s.out, "Draft:   %s = %s\n", k, v)
	}

	if st := s.session.State(); st.Error != "" {
		fmt.Fprintf(s.out, "Error:   %s\n", st.Error)
	}
}

func (s *shell) showUpload() {
	st := s.panel.Upload()
	switch {
	case st.InProgress:
		fmt.Fprintf(s.out, "Upload:  %d%%\n", progressValue(st))
	case st.Error != "":
		fmt.Fprintf(s.out, "Upload:  %s\n", st.Error)
	case st.Progress != nil:
		fmt.Fprintf(s.out, "Upload:  done (%d%%)\n", progressValue(st))
	}
}

func progressValue(st profile.UploadState) int {
	if st.Progress == nil {
		return 0
	}
	return *st.Progress
}
