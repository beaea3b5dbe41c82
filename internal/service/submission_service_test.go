package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"howlo/internal/domain"
)

type recordedEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedEvents) Publish(eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}

func (r *recordedEvents) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.types {
		if t == eventType {
			n++
		}
	}
	return n
}

const userChannel = "C-HOWLO"

func newSubmissions(env *testEnv, events EventPublisher) *SubmissionService {
	return NewSubmissionService(env.scoring, env.tracker, env.announcer, events)
}

func TestSubmitPostsConfirmationAndDM(t *testing.T) {
	env := newTestEnv(t)
	env.gw.Names["U1"] = "Ada"
	subs := newSubmissions(env, nil)

	in := input("U1", 9)
	in.Companion = domain.Companion{UserID: "U7"}
	if _, err := subs.Submit(context.Background(), userChannel, in, inLaunch); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	posts := env.gw.PostsTo(userChannel)
	if len(posts) != 1 {
		t.Fatalf("ожидалось подтверждение в канале, получено %d", len(posts))
	}
	want := `Accomplishment recorded for <@U1>: *"Snap a photo with someone you just met (Post it on LinkedIn or Slack)"* with *<@U7>* at *Coffee Chat*!`
	if posts[0].Text != want {
		t.Fatalf("Text = %q", posts[0].Text)
	}

	dms := env.gw.PostsTo("U7")
	if len(dms) != 1 || !strings.Contains(dms[0].Text, "*Ada* (<@U1>) just tagged you") {
		t.Fatalf("DM = %+v", dms)
	}
}

func TestSubmitCelebratesHowloAndDenout(t *testing.T) {
	env := newTestEnv(t)
	subs := newSubmissions(env, nil)
	ctx := context.Background()

	for i, slot := range firstRow {
		if _, err := subs.Submit(ctx, userChannel, input("U1", slot), inLaunch.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	var howlo []string
	for _, m := range env.gw.PostsTo(userChannel) {
		if strings.Contains(m.Text, "*HOWLO!*") {
			howlo = append(howlo, m.Text)
		}
	}
	if len(howlo) != 1 {
		t.Fatalf("ожидалось одно HOWLO, получено %v", howlo)
	}
	if !strings.Contains(howlo[0], "+500 XP bonus!") || !strings.Contains(howlo[0], "https://howlo.test/card/U1") {
		t.Fatalf("HOWLO = %q", howlo[0])
	}

	for i, slot := range []int{5, 6, 7, 8, 9, 10, 11, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24} {
		if _, err := subs.Submit(ctx, userChannel, input("U1", slot), inLaunch.Add(time.Hour+time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	var denout int
	for _, m := range env.gw.PostsTo(userChannel) {
		if strings.Contains(m.Text, "*DENOUT!*") {
			denout++
			if !strings.Contains(m.Text, "+1000 XP bonus!") {
				t.Fatalf("DENOUT = %q", m.Text)
			}
		}
	}
	if denout != 1 {
		t.Fatalf("DENOUT = %d", denout)
	}
}

func TestSubmitAnnouncesLeaderChange(t *testing.T) {
	env := newTestEnv(t)
	events := &recordedEvents{}
	subs := newSubmissions(env, events)
	ctx := context.Background()

	if _, err := subs.Submit(ctx, userChannel, input("U1", 0), inLaunch); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i, slot := range []int{0, 1} {
		if _, err := subs.Submit(ctx, userChannel, input("U2", slot), inLaunch.Add(time.Duration(i+1)*time.Minute)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	var champions []string
	for _, m := range env.gw.PostsTo(testChannel) {
		if m.Header == "👑 NEW LEADERBOARD CHAMPION! 👑" {
			champions = append(champions, m.Plain())
		}
	}
	if len(champions) != 1 {
		t.Fatalf("ожидалось одно объявление о лидере, получено %d", len(champions))
	}
	if !strings.Contains(champions[0], "*<@U2>* has taken the #1 spot with *200 XP*") {
		t.Fatalf("объявление = %s", champions[0])
	}
	if !strings.Contains(champions[0], "launch period") {
		t.Fatalf("нет подписи стартового периода: %s", champions[0])
	}
	if events.count(EventAchievement) != 3 || events.count(EventLeaderChange) != 1 {
		t.Fatalf("события = %v", events.types)
	}
}

func TestSubmitValidationErrorHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	events := &recordedEvents{}
	subs := newSubmissions(env, events)

	in := input("U1", 0)
	in.Location = ""
	if _, err := subs.Submit(context.Background(), userChannel, in, inLaunch); !errors.Is(err, ErrValidation) {
		t.Fatalf("ожидалась ошибка валидации, получено %v", err)
	}
	if len(env.gw.Posts) != 0 || events.count(EventAchievement) != 0 {
		t.Fatalf("при ошибке ничего не отправляется")
	}
}

func TestSubmitSurvivesGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gw.SetFail(errors.New("slack is down"))
	subs := newSubmissions(env, nil)

	res, err := subs.Submit(context.Background(), userChannel, input("U1", 0), inLaunch)
	if err != nil || res == nil {
		t.Fatalf("запись не зависит от мессенджера: %v", err)
	}
	if got := env.totalXP(t, "U1", env.classifier.Filter(inLaunch)); got != domain.BaseXP {
		t.Fatalf("TotalXP = %d", got)
	}
}
