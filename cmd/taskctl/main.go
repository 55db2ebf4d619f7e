// taskctl is a small terminal front end for the taskhub API, built on the
// same client layer a UI would use.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/corvid89/taskhub/internal/client"
	"github.com/corvid89/taskhub/internal/domain/task"
)

const usage = `usage: taskctl [-server URL] <command> [args]

commands:
  register <name> <email>        create an account (prompts for password)
  login <email>                  log in (prompts for password)
  logout                         drop the stored session
  whoami                         show the logged-in user
  list [-status S] [-priority P] [-sort-by F] [-sort-order O]
  add <title> [-desc D] [-priority P] [-due RFC3339]
  edit <id> [-title T] [-desc D] [-priority P] [-due RFC3339]
  done <id>                      toggle completion
  rm <id>                        delete a task
  stats                          aggregate counts
`

func main() {
	server := flag.String("server", envOr("TASKHUB_SERVER", "http://localhost:8080"), "API base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	session := client.NewSession(client.FileTokenStore{Path: client.DefaultTokenPath()})
	api := client.New(*server, session)
	store := client.NewTaskStore(api)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := run(ctx, args, session, api, store); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, session *client.Session, api *client.Client, store *client.TaskStore) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		if len(rest) < 2 {
			return fmt.Errorf("register needs <name> <email>")
		}

		password, err := promptPassword(true)
		if err != nil {
			return err
		}

		u, err := api.Register(ctx, rest[0], rest[1], password)
		if err != nil {
			return err
		}

		fmt.Printf("registered and logged in as %s <%s>\n", u.Name, u.Email)
		return nil

	case "login":
		if len(rest) < 1 {
			return fmt.Errorf("login needs <email>")
		}

		password, err := promptPassword(false)
		if err != nil {
			return err
		}

		u, err := api.Login(ctx, rest[0], password)
		if err != nil {
			return err
		}

		fmt.Printf("logged in as %s <%s>\n", u.Name, u.Email)
		return nil

	case "logout":
		session.Clear()
		store.Reset()
		fmt.Println("logged out")
		return nil

	case "whoami":
		u, err := api.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", u.Name, u.Email)
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		status := fs.String("status", "all", "all|completed|pending")
		priority := fs.String("priority", "all", "all|low|medium|high")
		sortBy := fs.String("sort-by", "createdAt", "createdAt|dueDate|priority|title")
		sortOrder := fs.String("sort-order", "desc", "asc|desc")
		_ = fs.Parse(rest)

		store.SetFilters(client.Filters{
			Status:    *status,
			Priority:  *priority,
			SortBy:    *sortBy,
			SortOrder: *sortOrder,
		})

		if err := store.Fetch(ctx); err != nil {
			return err
		}

		for _, t := range store.FilteredTasks() {
			printTask(t)
		}
		return nil

	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("add needs <title>")
		}

		fs := flag.NewFlagSet("add", flag.ExitOnError)
		desc := fs.String("desc", "", "description")
		priority := fs.String("priority", "", "low|medium|high")
		due := fs.String("due", "", "due date, RFC3339")
		_ = fs.Parse(rest[1:])

		req := task.CreateTaskRequest{
			Title:       rest[0],
			Description: *desc,
			Priority:    *priority,
		}

		if *due != "" {
			d, err := time.Parse(time.RFC3339, *due)
			if err != nil {
				return fmt.Errorf("invalid -due: %w", err)
			}
			req.DueDate = &d
		}

		t, err := store.Create(ctx, req)
		if err != nil {
			return err
		}

		printTask(t)
		return nil

	case "edit":
		if len(rest) < 1 {
			return fmt.Errorf("edit needs <id>")
		}

		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		title := fs.String("title", "", "new title")
		desc := fs.String("desc", "", "new description")
		priority := fs.String("priority", "", "low|medium|high")
		due := fs.String("due", "", "due date, RFC3339")
		_ = fs.Parse(rest[1:])

		var req task.UpdateTaskRequest

		if *title != "" {
			req.Title = title
		}
		if *desc != "" {
			req.Description = desc
		}
		if *priority != "" {
			req.Priority = priority
		}
		if *due != "" {
			d, err := time.Parse(time.RFC3339, *due)
			if err != nil {
				return fmt.Errorf("invalid -due: %w", err)
			}
			req.DueDate = &d
		}

		t, err := store.Update(ctx, rest[0], req)
		if err != nil {
			return err
		}

		printTask(t)
		return nil

	case "done":
		if len(rest) < 1 {
			return fmt.Errorf("done needs <id>")
		}

		_, message, err := store.Toggle(ctx, rest[0])
		if err != nil {
			return err
		}

		fmt.Println(message)
		return nil

	case "rm":
		if len(rest) < 1 {
			return fmt.Errorf("rm needs <id>")
		}

		if err := store.Delete(ctx, rest[0]); err != nil {
			return err
		}

		fmt.Println("deleted")
		return nil

	case "stats":
		if err := store.Fetch(ctx); err != nil {
			return err
		}

		st := store.Stats()
		fmt.Printf("total=%d completed=%d pending=%d high=%d medium=%d low=%d\n",
			st.Total, st.Completed, st.Pending, st.High, st.Medium, st.Low)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// promptPassword reads the password from stdin. With confirm set it asks
// twice and matches locally; the server never sees a confirmation field.
func promptPassword(confirm bool) (string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprint(os.Stderr, "password: ")
	first, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	first = strings.TrimRight(first, "\r\n")

	if len(first) > 72 {
		// bcrypt silently truncates past this
		return "", fmt.Errorf("password longer than %d bytes", 72)
	}

	if !confirm {
		return first, nil
	}

	fmt.Fprint(os.Stderr, "confirm password: ")
	second, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	second = strings.TrimRight(second, "\r\n")

	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}

	return first, nil
}

func printTask(t task.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	due := ""
	if t.DueDate != nil {
		due = " due " + t.DueDate.Format("2006-01-02")
	}

	fmt.Printf("[%s] %-8s %s  %s%s\n", mark, t.Priority, t.ID, t.Title, due)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
