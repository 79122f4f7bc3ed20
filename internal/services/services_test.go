package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/models"
)

func setupDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("file:"+name+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.Migrate())
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		database.DB = nil
	})
}

func createUser(t *testing.T, email string, mutate func(*models.UserSettings)) models.User {
	t.Helper()
	user := models.User{Email: email, FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, database.DB.Create(&user).Error)
	settings := models.DefaultSettings(user.ID)
	if mutate != nil {
		mutate(&settings)
	}
	require.NoError(t, database.DB.Create(&settings).Error)
	return user
}

type fakeMulticast struct {
	calls []*messaging.MulticastMessage
	fail  map[string]error
	err   error
}

func (f *fakeMulticast) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.calls = append(f.calls, m)
	if f.err != nil {
		return nil, f.err
	}
	resp := &messaging.BatchResponse{}
	for _, tok := range m.Tokens {
		if err, ok := f.fail[tok]; ok {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: err})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + tok})
	}
	return resp, nil
}

type fakeMail struct {
	sent   []*mail.SGMailV3
	status int
}

func (f *fakeMail) Send(m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, m)
	status := f.status
	if status == 0 {
		status = 202
	}
	return &rest.Response{StatusCode: status, Body: "ok"}, nil
}

func withServices(t *testing.T, push multicaster, sender mailSender) {
	t.Helper()
	prevPush, prevEmail := Push, Email
	Push = &PushService{client: push}
	Email = &EmailService{client: sender, fromName: "SMART Goals", from: "noreply@example.com"}
	t.Cleanup(func() { Push, Email = prevPush, prevEmail })
}

func TestPushSendToUser(t *testing.T) {
	setupDB(t)
	user := createUser(t, "ada@example.com", nil)
	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, database.DB.Create(&models.DeviceToken{UserID: user.ID, Token: tok}).Error)
	}

	fake := &fakeMulticast{fail: map[string]error{"b": errors.New("quota exceeded")}}
	withServices(t, fake, nil)

	n, err := Push.SendToUser(context.Background(), user.ID, "Hi", "there", map[string]string{"goalId": "g1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, fake.calls, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, fake.calls[0].Tokens)
	assert.Equal(t, "Hi", fake.calls[0].Notification.Title)

	var count int64
	database.DB.Model(&models.DeviceToken{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(3), count, "only unregistered tokens are pruned")

	n, err = Push.SendToUser(context.Background(), uuid.New(), "Hi", "there", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPushDisabled(t *testing.T) {
	p := &PushService{}
	assert.False(t, p.Enabled())
	_, err := p.SendToUser(context.Background(), uuid.New(), "t", "b", nil)
	assert.ErrorIs(t, err, ErrPushNotConfigured)
}

func TestEmailSend(t *testing.T) {
	fake := &fakeMail{}
	withServices(t, nil, fake)
	user := &models.User{Email: "ada@example.com", FirstName: "Ada", Username: "ada"}

	require.NoError(t, Email.SendDigest(context.Background(), user, "es", 4))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "Tu resumen semanal de progreso", fake.sent[0].Subject)
	assert.Equal(t, "ada@example.com", fake.sent[0].Personalizations[0].To[0].Address)
	assert.Contains(t, fake.sent[0].Content[0].Value, "Hola Ada, completaste 4 tarea(s)")

	fake.status = 401
	err := Email.SendTest(context.Background(), user, "en")
	assert.ErrorContains(t, err, "status 401")

	disabled := &EmailService{}
	assert.ErrorIs(t, disabled.Send(context.Background(), "", "x@example.com", "s", "b"), ErrEmailNotConfigured)
}

func TestInitEmailWithoutKey(t *testing.T) {
	prev := Email
	t.Cleanup(func() { Email = prev })
	assert.False(t, InitEmail(config.EmailConfig{}).Enabled())
	assert.True(t, InitEmail(config.EmailConfig{SendGridAPIKey: "SG.x", FromEmail: "a@b.c"}).Enabled())
}

func seedGoal(t *testing.T, userID uuid.UUID, status string, tasks ...models.Task) (models.Goal, models.WeeklyGoal) {
	t.Helper()
	goal := models.Goal{UserID: userID, Title: "Run", Category: "Health", Status: status}
	require.NoError(t, database.DB.Create(&goal).Error)
	week := models.WeeklyGoal{GoalID: goal.ID, Title: "Week 1", WeekNumber: 1}
	require.NoError(t, database.DB.Create(&week).Error)
	for i := range tasks {
		tasks[i].GoalID = goal.ID
		tasks[i].WeeklyGoalID = week.ID
		require.NoError(t, database.DB.Create(&tasks[i]).Error)
	}
	return goal, week
}

func TestRecalculateProgress(t *testing.T) {
	setupDB(t)
	user := createUser(t, "ada@example.com", nil)
	goal, week := seedGoal(t, user.ID, models.GoalStatusActive,
		models.Task{Title: "a", Completed: true},
		models.Task{Title: "b"},
		models.Task{Title: "c"},
	)

	progress, err := RecalculateProgress(database.DB, week.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, progress)

	var w models.WeeklyGoal
	require.NoError(t, database.DB.First(&w, "id = ?", week.ID).Error)
	assert.Equal(t, 33, w.Progress)
	assert.Equal(t, models.WeeklyStatusInProgress, w.Status)

	database.DB.Model(&models.Task{}).Where("goal_id = ?", goal.ID).Update("completed", true)
	progress, err = RecalculateProgress(database.DB, week.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress)

	var g models.Goal
	require.NoError(t, database.DB.First(&g, "id = ?", goal.ID).Error)
	assert.Equal(t, 100, g.Progress)
	assert.Equal(t, models.GoalStatusActive, g.Status, "goal status is not changed by progress")
}

func TestPercentRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 12, percent(1, 8))
	assert.Equal(t, 38, percent(3, 8))
	assert.Equal(t, 67, percent(2, 3))
}

func TestDailyReminders(t *testing.T) {
	setupDB(t)
	fakePush := &fakeMulticast{}
	mailer := &fakeMail{}
	withServices(t, fakePush, mailer)

	busy := createUser(t, "busy@example.com", func(s *models.UserSettings) {
		s.PushNotifications = true
		s.Language = "zh"
	})
	require.NoError(t, database.DB.Create(&models.DeviceToken{UserID: busy.ID, Token: "tok"}).Error)
	seedGoal(t, busy.ID, models.GoalStatusActive)
	seedGoal(t, busy.ID, models.GoalStatusActive)

	idle := createUser(t, "idle@example.com", nil)
	seedGoal(t, idle.ID, models.GoalStatusPaused)

	muted := createUser(t, "muted@example.com", func(s *models.UserSettings) { s.GoalReminders = false })
	seedGoal(t, muted.ID, models.GoalStatusActive)

	n, err := RunDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var notes []models.Notification
	require.NoError(t, database.DB.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, busy.ID, notes[0].UserID)
	assert.Equal(t, models.NotificationGoalReminder, notes[0].Type)
	assert.Contains(t, notes[0].Body, "2")

	require.Len(t, fakePush.calls, 1)
	assert.Equal(t, "继续推进你的目标", fakePush.calls[0].Notification.Title)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "每日目标提醒", mailer.sent[0].Subject)
}

func TestWeeklyDigest(t *testing.T) {
	setupDB(t)
	mailer := &fakeMail{}
	withServices(t, nil, mailer)

	now := time.Now()
	recent := now.Add(-48 * time.Hour)
	old := now.Add(-10 * 24 * time.Hour)

	user := createUser(t, "ada@example.com", nil)
	seedGoal(t, user.ID, models.GoalStatusActive,
		models.Task{Title: "a", Completed: true, CompletedAt: &recent},
		models.Task{Title: "b", Completed: true, CompletedAt: &recent},
		models.Task{Title: "c", Completed: true, CompletedAt: &old},
		models.Task{Title: "d"},
	)
	createUser(t, "nodigest@example.com", func(s *models.UserSettings) { s.WeeklyDigest = false })

	n, err := RunWeeklyDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Content[0].Value, "completed 2 task(s)")
}

func TestWeeklyDigestWithoutEmail(t *testing.T) {
	setupDB(t)
	withServices(t, nil, nil)
	createUser(t, "ada@example.com", nil)

	n, err := RunWeeklyDigest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(&config.Config{ReminderCron: "not a cron", DigestCron: "0 1 * * 1"})
	assert.Error(t, err)

	s, err := NewScheduler(&config.Config{ReminderCron: "0 1 * * *", DigestCron: "0 1 * * 1"})
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestNotifyStoresMetadata(t *testing.T) {
	setupDB(t)
	withServices(t, nil, nil)
	user := createUser(t, "ada@example.com", nil)

	n, err := Notify(context.Background(), user.ID, models.NotificationGoalCompleted, "Done", "Well done",
		map[string]interface{}{"goalId": "g1"})
	require.NoError(t, err)
	require.NotNil(t, n.Metadata)
	assert.JSONEq(t, `{"goalId":"g1"}`, *n.Metadata)
}
