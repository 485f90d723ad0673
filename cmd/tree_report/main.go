// Command tree_report logs in to the LMS as a student and prints derived views
// of the knowledge tree as JSON: the search index, search results, course
// progress for given root nodes and the progress summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/yungbote/qubitgyan-student/internal/app"
	"github.com/yungbote/qubitgyan-student/internal/clients/lms"
	"github.com/yungbote/qubitgyan-student/internal/data/localstate"
	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
	"github.com/yungbote/qubitgyan-student/internal/domain/student"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
	"github.com/yungbote/qubitgyan-student/internal/platform/shutdown"
	"github.com/yungbote/qubitgyan-student/internal/services"
)

type idList []int64

func (l *idList) String() string {
	parts := make([]string, 0, len(*l))
	for _, id := range *l {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid node id %q", v)
	}
	*l = append(*l, id)
	return nil
}

type report struct {
	Learner string                             `json:"learner"`
	Nodes   int                                `json:"nodes"`
	Index   []learning.SearchNode              `json:"index,omitempty"`
	Results []learning.SearchNode              `json:"results,omitempty"`
	Courses map[string]learning.CourseProgress `json:"courses,omitempty"`
	Summary *learning.ProgressSummary          `json:"summary,omitempty"`
}

func main() {
	var (
		username string
		query    string
		limit    int
		index    bool
		logout   bool
		roots    idList
	)
	flag.StringVar(&username, "user", os.Getenv("QG_USERNAME"), "LMS username")
	flag.StringVar(&query, "q", "", "search the tree for this text")
	flag.IntVar(&limit, "limit", 0, "max search results (default 7)")
	flag.BoolVar(&index, "index", false, "print the full search index")
	flag.BoolVar(&logout, "logout", false, "forget the saved login and exit")
	flag.Var(&roots, "root", "course root node id to report progress for (repeatable)")
	flag.Parse()

	if err := run(username, query, limit, index, logout, roots); err != nil {
		fmt.Fprintf(os.Stderr, "tree_report: %v\n", err)
		os.Exit(1)
	}
}

func run(username, query string, limit int, index, logout bool, roots idList) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("-user (or QG_USERNAME) required")
	}

	cfg, err := app.LoadConfig(nil)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode, logger.WithService("tree_report"))
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	db, err := localstate.Open(log, cfg.LocalStateDSN)
	if err != nil {
		return err
	}
	tokens := localstate.NewTokenRepo(db, log)
	if logout {
		return tokens.Delete(ctx, username)
	}

	client, err := lms.New(lms.Options{
		BaseURL:    cfg.LMS.BaseURL,
		Timeout:    cfg.LMS.Timeout.Std(),
		MaxRetries: cfg.LMS.MaxRetries,
		Tokens:     tokens.Source(username),
		Log:        log,
	})
	if err != nil {
		return err
	}

	if err := ensureLogin(ctx, client, tokens, username); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sessions := services.NewSessions(log, client, func() services.TreeService {
		return services.NewTreeService(log, client, nil, nil)
	}, time.Hour, nil)
	ws := sessions.Get(username)
	arena, err := ws.Tree.Load(ctx)
	if err != nil {
		return err
	}

	progress := services.NewProgressService(log, client, services.NewResourceService(log, client), loc)
	search := services.NewSearchService(log)

	out := report{Learner: username, Nodes: arena.Len()}
	if index {
		out.Index = search.Index(ctx, ws)
	}
	if query != "" {
		out.Results = search.Query(ctx, ws, query, limit)
	}
	if len(roots) > 0 {
		out.Courses = map[string]learning.CourseProgress{}
		for _, id := range roots {
			cp, err := progress.CourseProgress(ctx, ws, id)
			if err != nil {
				return err
			}
			out.Courses[strconv.FormatInt(id, 10)] = cp
		}
	}
	if !index && query == "" && len(roots) == 0 {
		sum := progress.Summary(ctx, ws)
		out.Summary = &sum
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ensureLogin reuses a saved, unexpired login and otherwise exchanges
// QG_PASSWORD for a new token pair.
func ensureLogin(ctx context.Context, client *lms.Client, tokens localstate.TokenRepo, username string) error {
	if _, err := tokens.Source(username).Token(ctx); err == nil {
		return nil
	}
	password := os.Getenv("QG_PASSWORD")
	if password == "" {
		return errors.New("no saved login; set QG_PASSWORD to log in")
	}
	pair, err := client.ObtainToken(ctx, student.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if _, err := tokens.Save(ctx, username, pair.Access, pair.Refresh); err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	return nil
}
