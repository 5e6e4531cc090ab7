// doomcli drives the whole flow from the command line: submit a
// survey, poll for the verdict, leave a guestbook entry, react to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"doomsday-orchestrator/client"
	"doomsday-orchestrator/config"
	"doomsday-orchestrator/core/models"

	"github.com/google/uuid"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "API base URL")
	name := flag.String("name", "", "your name")
	jobTitle := flag.String("job", "", "current occupation")
	strengths := flag.String("strengths", "", "stated strengths")
	hobbies := flag.String("hobbies", "", "stated hobbies")
	message := flag.String("message", "", "optional guestbook message to leave after the verdict")
	flag.Parse()

	if *name == "" || *jobTitle == "" || *strengths == "" || *hobbies == "" {
		fmt.Fprintln(os.Stderr, "usage: doomcli -name NAME -job JOB -strengths S -hobbies H [-message M]")
		os.Exit(2)
	}

	ctx := context.Background()
	api := client.New(*addr)
	sessionID := uuid.NewString()

	status, err := api.SubmitSurvey(ctx, sessionID, models.Survey{
		Name:      *name,
		JobTitle:  *jobTitle,
		Strengths: *strengths,
		Hobbies:   *hobbies,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("submitted session %s, status %s\n", sessionID, status)

	pres := config.DefaultPresentation()
	poller := client.NewPoller(api, sessionID, client.PollerConfig{
		Messages: pres.LoadingMessages,
	})
	poller.Start()
	defer poller.Stop()

	var verdict *client.Result
	for ev := range poller.Events() {
		switch ev.Kind {
		case client.EventMessage:
			fmt.Println(ev.Message)
		case client.EventStillWorking:
			fmt.Println("extended analysis required, please stand by...")
		case client.EventDelivered:
			verdict = ev.Result
		case client.EventFailed:
			fmt.Fprintln(os.Stderr, "the analysis engine declared an error. no verdict.")
			os.Exit(1)
		case client.EventRedirected:
			fmt.Fprintln(os.Stderr, "no session to poll")
			os.Exit(1)
		}
		if verdict != nil {
			break
		}
	}
	if verdict == nil || verdict.DDay == nil {
		fmt.Fprintln(os.Stderr, "polling ended without a verdict")
		os.Exit(1)
	}

	fmt.Printf("\nD-%d years until obsolescence\n\n", *verdict.DDay)
	for _, risk := range verdict.SkillRisks {
		fmt.Printf("  %-30s %3d%% within %d years: %s\n",
			risk.SkillName, risk.ReplacementProb, risk.TimeHorizon, risk.Justification)
	}
	fmt.Println()
	for _, card := range verdict.CareerCards {
		fmt.Printf("  [%d] %s\n      %s\n", card.CardIndex, card.ComboFormula, card.Reason)
		for _, step := range card.Roadmap {
			fmt.Printf("      - %s (%s)\n", step.Step, step.Duration)
		}
	}

	if *message != "" {
		entryID, createdAt, err := api.PostEntry(ctx, sessionID, *jobTitle, *verdict.DDay, *message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "guestbook post failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nguestbook entry %s left at %s\n", entryID, createdAt.Format(time.RFC3339))

		reactions, err := api.React(ctx, entryID, "🔥")
		if err != nil {
			fmt.Fprintf(os.Stderr, "reaction failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("reactions: %v\n", reactions)
	}
}
