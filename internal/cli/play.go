package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/file"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/logger"
	"quizmaster/internal/questions"
)

type playOptions struct {
	topic       string
	difficulty  string
	name        string
	profilePath string
	offline     bool
}

// NewPlayCmd runs a single timed quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.topic, "topic", "", "quiz topic (required)")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().StringVar(&opts.name, "name", "", "your name; remembered for next time")
	cmd.Flags().StringVar(&opts.profilePath, "profile", file.DefaultPath(), "where the remembered name is kept")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use the built-in question bank")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

var errQuit = errors.New("quit")

func runPlay(ctx context.Context, configPath string, opts playOptions, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// the terminal is the UI here; only log when asked to
	log := logger.Nop()
	if cfg.Log.Mode != "" {
		if log, err = logger.New(cfg.Log.Mode); err != nil {
			return err
		}
		defer log.Sync()
	}

	lines := readLines(in)
	profile := file.NewKVStore(opts.profilePath)
	userName, err := resolveUserName(profile, opts.name, lines, out)
	if err != nil {
		return err
	}

	rawDifficulty := opts.difficulty
	if rawDifficulty == "" {
		rawDifficulty = cfg.DefaultDifficulty()
	}
	difficulty, err := domain.ParseDifficulty(rawDifficulty)
	if err != nil {
		return err
	}

	var source app.QuestionSource
	switch {
	case opts.offline:
		source = questions.NewStaticSource(questions.SampleBank())
	case cfg.Questions.Endpoint != "":
		source = questions.NewHTTPSource(cfg.Questions.Endpoint, &http.Client{Timeout: 60 * time.Second})
	case cfg.Generator.APIKey != "":
		source = questions.NewGeneratorSource(questions.NewOpenAIGenerator(cfg.Generator.APIKey, cfg.Generator.BaseURL, cfg.Generator.Model, log))
	default:
		fmt.Fprintln(out, "No question endpoint or API key configured; using the offline bank.")
		source = questions.NewStaticSource(questions.SampleBank())
	}

	service := app.NewQuizService(memory.NewSessionStore(), memory.NewResultStore(), source,
		app.WithSettings(sessionSettings(cfg)),
		app.WithLogger(log),
	)

	fmt.Fprintf(out, "Loading %s questions on %q for %s...\n", difficulty, opts.topic, userName)
	ctrl := service.Open(userName)
	defer service.Leave(ctrl.ID())
	updates, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(ctx, opts.topic, difficulty); err != nil {
		if domain.IsValidation(err) {
			return err
		}
		fmt.Fprintln(out, app.LoadFailedMessage)
		return err
	}

	r := &renderer{out: out, lastIndex: -1}
	fmt.Fprintln(out, "Answer with 1-4, move with n/p, submit with s, quit with q.")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if u.Result != nil {
				r.result(*u.Result, service.Passed(*u.Result))
				return nil
			}
			r.state(u.State)
		case line, ok := <-lines:
			if !ok {
				// a submit may already have settled the quiz
				if u := ctrl.Snapshot(); u.Result != nil {
					r.result(*u.Result, service.Passed(*u.Result))
					return nil
				}
				fmt.Fprintln(out, "Input closed, quiz abandoned.")
				return nil
			}
			if err := handleCommand(ctrl, line); err != nil {
				if errors.Is(err, errQuit) {
					fmt.Fprintln(out, "Quiz abandoned.")
					return nil
				}
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

func resolveUserName(profile app.KeyValueStore, flagName string, lines <-chan string, out io.Writer) (string, error) {
	if strings.TrimSpace(flagName) != "" {
		return app.SaveUserName(profile, flagName)
	}
	name, ok, err := app.LoadUserName(profile)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}
	fmt.Fprint(out, "Your name: ")
	for line := range lines {
		name, err := app.SaveUserName(profile, line)
		if err == nil {
			return name, nil
		}
		fmt.Fprint(out, "Please enter a name: ")
	}
	return "", &domain.ValidationError{Op: "play", Err: domain.ErrEmptyUserName}
}

func handleCommand(ctrl *app.Controller, line string) error {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "":
		return nil
	case "q":
		return errQuit
	case "n":
		_, err := ctrl.Navigate(domain.DirectionNext)
		return err
	case "p":
		_, err := ctrl.Navigate(domain.DirectionPrev)
		return err
	case "s":
		_, err := ctrl.Submit()
		return err
	}
	option, err := strconv.Atoi(cmd)
	if err != nil {
		return fmt.Errorf("unknown command %q", cmd)
	}
	st := ctrl.Snapshot().State
	_, err = ctrl.SelectAnswer(st.CurrentIndex, option-1)
	return err
}

func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// renderer prints a question when the cursor or its answer changes and
// announces the clock at a few checkpoints instead of every tick.
type renderer struct {
	out        io.Writer
	lastIndex  int
	lastAnswer int
}

func (r *renderer) state(st domain.SessionState) {
	if st.Phase != domain.PhaseReady || len(st.Questions) == 0 {
		return
	}
	answer := st.Answers[st.CurrentIndex]
	if st.CurrentIndex != r.lastIndex || answer != r.lastAnswer {
		r.lastIndex, r.lastAnswer = st.CurrentIndex, answer
		q := st.Questions[st.CurrentIndex]
		fmt.Fprintf(r.out, "\nQuestion %d of %d (%d answered, %s left)\n%s\n",
			st.CurrentIndex+1, len(st.Questions), st.AnsweredCount(), clock(st.RemainingSeconds), q.Text)
		for i, opt := range q.Options {
			marker := " "
			if i == answer {
				marker = "*"
			}
			fmt.Fprintf(r.out, " %s %d) %s\n", marker, i+1, opt)
		}
		return
	}
	switch st.RemainingSeconds {
	case 60, 30, 10:
		fmt.Fprintf(r.out, "%s left\n", clock(st.RemainingSeconds))
	}
}

func (r *renderer) result(res domain.SessionResult, passed bool) {
	verdict := "not passed"
	if passed {
		verdict = "passed"
	}
	if res.TimedOut {
		fmt.Fprintln(r.out, "\nTime is up!")
	}
	fmt.Fprintf(r.out, "\n%s: Score: %d%% (%s)\n", res.Topic, res.ScorePercent, verdict)
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
