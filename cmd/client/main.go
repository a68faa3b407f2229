// Package main runs the CapTrack command-line client: an interactive shell
// over the capstone backend's activities, groups, projects, tasks,
// repository and profile resources.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/client/api"
	"github.com/jcarandang/captrack/internal/client/controller"
	"github.com/jcarandang/captrack/internal/client/credstore"
	"github.com/jcarandang/captrack/internal/client/gateway"
	"github.com/jcarandang/captrack/internal/client/session"
	"github.com/jcarandang/captrack/internal/config"
	"github.com/jcarandang/captrack/internal/logger"
	"github.com/jcarandang/captrack/internal/models"
)

var (
	version   string
	buildDate string
)

// app bundles the wired client pieces used by the shell.
type app struct {
	sess *session.Manager
	api  *api.Client

	activities *controller.ListController[models.Activity]
	groups     *controller.ListController[models.Group]
	projects   *controller.ListController[models.Project]
	tasks      *controller.ListController[models.Task]
	repo       *controller.ListController[models.RepositoryItem]
}

// repl runs the interactive shell loop, accepting commands to browse and
// update capstone resources.
func repl(a *app) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("captrack> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()

		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, login, logout, whoami, profile,")
			fmt.Println("  activities [sort], groups, projects [sort], project <id>,")
			fmt.Println("  tasks, task add <title>, task done <id>, repo [<id>], exit")
		case "login":
			cmdLogin(ctx, a, scanner)
		case "logout":
			a.sess.Logout(ctx)
			fmt.Println("Signed out")
		case "whoami":
			cmdWhoami(a)
		case "profile":
			cmdProfile(ctx, a, args[1:], scanner)
		case "activities":
			cmdList(ctx, a, a.activities, args[1:], func(x models.Activity) string {
				return fmt.Sprintf("%s  %s (%s)", x.Date, x.Title, x.ID)
			}, func(x, y models.Activity) bool { return x.Title < y.Title })
		case "groups":
			cmdList(ctx, a, a.groups, args[1:], func(g models.Group) string {
				return fmt.Sprintf("%s: %s (adviser: %s)", g.Name, strings.Join(g.Members, ", "), g.Adviser)
			}, func(x, y models.Group) bool { return x.Name < y.Name })
		case "projects":
			cmdList(ctx, a, a.projects, args[1:], func(p models.Project) string {
				return fmt.Sprintf("[%s] %s (%s)", p.Status, p.Title, p.ID)
			}, func(x, y models.Project) bool { return x.Title < y.Title })
		case "project":
			cmdProject(ctx, a, args[1:])
		case "tasks":
			cmdList(ctx, a, a.tasks, args[1:], func(t models.Task) string {
				mark := " "
				if t.Done {
					mark = "x"
				}
				return fmt.Sprintf("[%s] %s (%s)", mark, t.Title, t.ID)
			}, func(x, y models.Task) bool { return x.Title < y.Title })
		case "task":
			cmdTask(ctx, a, args[1:])
		case "repo":
			cmdRepo(ctx, a, args[1:])
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func requireAuth(a *app) bool {
	if !a.sess.IsAuthenticated() {
		fmt.Println("Please login first")
		return false
	}
	return true
}

func cmdLogin(ctx context.Context, a *app, scanner *bufio.Scanner) {
	fmt.Print("Email: ")
	if !scanner.Scan() {
		return
	}
	email := strings.TrimSpace(scanner.Text())

	fmt.Print("Password: ")
	if !scanner.Scan() {
		return
	}
	password := scanner.Text()

	// Required-field check happens here at the call site; the backend
	// repeats it server-side with a 422.
	if email == "" || password == "" {
		fmt.Println("Email and password are required")
		return
	}

	if err := a.sess.Login(ctx, email, password); err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	fmt.Println("Signed in as", email)
}

func cmdWhoami(a *app) {
	if !requireAuth(a) {
		return
	}
	u := a.sess.CurrentUser()
	if u == nil {
		fmt.Println("Signed in, but the user record is not loaded yet")
		return
	}
	fmt.Printf("%s <%s> role=%s\n", u.Name, u.Email, models.NormalizeRole(u))
}

// cmdProfile shows the profile, or with "name <value>" edits it through a
// form controller so the save only fires when the buffer actually changed.
func cmdProfile(ctx context.Context, a *app, args []string, scanner *bufio.Scanner) {
	if !requireAuth(a) {
		return
	}

	form := controller.NewForm(
		func(ctx context.Context) (models.User, error) {
			u, err := a.api.CurrentUser(ctx)
			if err != nil {
				return models.User{}, err
			}
			return *u, nil
		},
		func(ctx context.Context, u models.User) (models.User, error) {
			saved, err := a.api.UpdateProfile(ctx, &u)
			if err != nil {
				return models.User{}, err
			}
			return *saved, nil
		},
	)

	if err := form.Load(ctx); err != nil {
		fmt.Println("Error:", err)
		return
	}

	if len(args) >= 2 && args[0] == "name" {
		buf := form.Buffer()
		buf.Name = strings.Join(args[1:], " ")
		form.Edit(buf)
		if !form.Dirty() {
			fmt.Println("Nothing to save")
			return
		}
		if err := form.Save(ctx); err != nil {
			fmt.Println("Error:", err)
			return
		}
		// Keep the session's user record in step with the edit.
		if err := a.sess.FetchUser(ctx); err != nil {
			fmt.Println("Saved, but refreshing the session user failed:", err)
			return
		}
		fmt.Println("Profile saved")
		return
	}

	u := form.Buffer()
	fmt.Printf("Name:   %s\nEmail:  %s\nCourse: %s\nRole:   %s\n",
		u.Name, u.Email, u.Course, models.NormalizeRole(&u))
}

// cmdList loads a collection and prints it; the "sort" argument installs a
// title sort on first use and reverses the order on every use after that.
func cmdList[T any](ctx context.Context, a *app, c *controller.ListController[T], args []string, render func(T) string, less func(a, b T) bool) {
	if !requireAuth(a) {
		return
	}
	if len(args) > 0 && args[0] == "sort" {
		if c.Err() == "" && len(c.Items()) > 0 {
			c.Toggle()
		} else {
			fmt.Println("Load the list first")
			return
		}
	} else {
		if err := c.Load(ctx); err != nil {
			fmt.Println("Error:", c.Err())
			return
		}
		c.SortBy(less)
	}
	for _, item := range c.Items() {
		fmt.Println(render(item))
	}
}

func cmdProject(ctx context.Context, a *app, args []string) {
	if !requireAuth(a) {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: project <id> | project add <title>")
		return
	}

	if args[0] == "add" {
		if !a.sess.CurrentUser().IsStudent() {
			fmt.Println("Only students can propose projects")
			return
		}
		title := strings.Join(args[1:], " ")
		if title == "" {
			fmt.Println("Usage: project add <title>")
			return
		}
		p, err := a.api.CreateProject(ctx, &models.Project{Title: title, Status: "proposed"})
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Created project %s (%s)\n", p.Title, p.ID)
		return
	}

	detail, err := a.api.GetProject(ctx, args[0])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("%s [%s]\nProgress:  %.1f%%\nPanelists: %s\n",
		detail.Project.Title, detail.Project.Status,
		detail.Progress, strings.Join(detail.Panelists, ", "))
}

func cmdTask(ctx context.Context, a *app, args []string) {
	if !requireAuth(a) {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: task add <title> | task done <id>")
		return
	}

	switch args[0] {
	case "add":
		if !a.sess.CurrentUser().IsStudent() {
			fmt.Println("Only students can add tasks")
			return
		}
		title := strings.Join(args[1:], " ")
		if title == "" {
			fmt.Println("Usage: task add <title>")
			return
		}
		t, err := a.api.CreateTask(ctx, &models.Task{Title: title})
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Created task %s (%s)\n", t.Title, t.ID)
	case "done":
		if len(args) < 2 {
			fmt.Println("Usage: task done <id>")
			return
		}
		var target *models.Task
		for _, t := range a.tasks.Items() {
			if t.ID == args[1] {
				target = &t
				break
			}
		}
		if target == nil {
			fmt.Println("Task not found; run 'tasks' first")
			return
		}
		target.Done = true
		if _, err := a.api.UpdateTask(ctx, target); err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Println("Task completed")
	default:
		fmt.Println("Usage: task add <title> | task done <id>")
	}
}

func cmdRepo(ctx context.Context, a *app, args []string) {
	if !requireAuth(a) {
		return
	}
	if len(args) > 0 && args[0] != "sort" {
		item, err := a.api.GetRepositoryItem(ctx, args[0])
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("%s (%d)\nAuthors: %s\n%s\n",
			item.Title, item.Year, strings.Join(item.Authors, ", "), item.Abstract)
		return
	}
	cmdList(ctx, a, a.repo, args, func(it models.RepositoryItem) string {
		return fmt.Sprintf("%d  %s (%s)", it.Year, it.Title, it.ID)
	}, func(x, y models.RepositoryItem) bool { return x.Title < y.Title })
}

// main wires the credential store, session manager, gateway and API client,
// restores any persisted session, and hands control to the shell.
func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer {
		fmt.Printf("CapTrack Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	zl, err := logger.New(options.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	store, err := credstore.NewFileStore(options.CredentialsFile)
	if err != nil {
		log.Fatal(err)
	}

	httpClient := &http.Client{Timeout: options.Timeout()}
	sess := session.New(store, httpClient, options.ServerURL, zl)
	gw := gateway.New(options.ServerURL, httpClient, sess, zl)
	gw.OnUnauthorized(sess.HandleUnauthorized)
	sess.SetGateway(gw)
	client := api.New(gw)

	if err := sess.Restore(context.Background()); err != nil {
		zl.Warn("session restore failed", zap.Error(err))
	}
	if u := sess.CurrentUser(); u != nil {
		fmt.Println("Welcome back,", u.Name)
	}

	a := &app{
		sess:       sess,
		api:        client,
		activities: controller.NewList(client.ListActivities),
		groups:     controller.NewList(client.ListGroups),
		projects:   controller.NewList(client.ListProjects),
		tasks:      controller.NewList(client.ListTasks),
		repo:       controller.NewList(client.ListRepository),
	}

	repl(a)
}
