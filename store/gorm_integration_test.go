package store_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the MySQL-backed store against a throwaway container.
//
// Run (requires Docker): INTEGRATION_TESTS=1 go test ./store -run GormStore -v

func TestGormStoreAgainstMySQL(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "auctions_test")

	config.ConnectDatabaseWithRetry()
	require.NotNil(t, config.GetDB(), "db is nil after ConnectDatabaseWithRetry")
	models.MigrateTable()

	s := store.NewGorm(config.GetDB())
	org := uuid.NewString()

	t.Run("auction crud and version check", func(t *testing.T) {
		auction := &models.Auction{
			OrganizationId: org,
			Title:          "Apartamento 71 - Moema",
			Status:         models.AuctionStatusDraft,
			PipelineStage:  models.PipelineStageTriagem,
		}
		require.NoError(t, s.CreateAuction(ctx, auction))
		require.NotZero(t, auction.ID)

		require.NoError(t, s.UpdateAuctionStage(ctx, org, auction.ID, models.PipelineStagePreparacao, auction.Version))
		require.ErrorIs(t,
			s.UpdateAuctionStage(ctx, org, auction.ID, models.PipelineStageAtivo, auction.Version),
			store.ErrStaleRecord)

		got, err := s.GetAuction(ctx, org, auction.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PipelineStagePreparacao, got.PipelineStage)
		assert.Equal(t, auction.Version+1, got.Version)

		_, err = s.GetAuction(ctx, uuid.NewString(), auction.ID)
		require.ErrorIs(t, err, store.ErrRecordNotFound)
	})

	t.Run("automation run unique key", func(t *testing.T) {
		auction := &models.Auction{OrganizationId: org, Title: "Lote 88", PipelineStage: models.PipelineStageAtivo}
		require.NoError(t, s.CreateAuction(ctx, auction))

		template := &models.TaskTemplate{OrganizationId: org, Title: "Conferir lances", StageTrigger: models.PipelineStageAtivo, DaysDue: 3}
		require.NoError(t, s.CreateTaskTemplate(ctx, template))

		run := &models.AutomationRun{OrganizationId: org, AuctionId: auction.ID, Stage: models.PipelineStageAtivo, TemplateId: template.ID}
		require.NoError(t, s.CreateAutomationRun(ctx, run))

		dup := &models.AutomationRun{OrganizationId: org, AuctionId: auction.ID, Stage: models.PipelineStageAtivo, TemplateId: template.ID}
		require.ErrorIs(t, s.CreateAutomationRun(ctx, dup), store.ErrDuplicateAutomationRun)
	})

	t.Run("task batch and listing", func(t *testing.T) {
		auction := &models.Auction{OrganizationId: org, Title: "Terreno 300m2", PipelineStage: models.PipelineStagePreparacao}
		require.NoError(t, s.CreateAuction(ctx, auction))

		due := time.Now().AddDate(0, 0, 3)
		batch := []*models.Task{
			{OrganizationId: org, Title: "Publicar edital", Status: models.TaskStatusTodo, AuctionId: &auction.ID, DueDate: &due},
			{OrganizationId: org, Title: "Fotografar imovel", Status: models.TaskStatusTodo, AuctionId: &auction.ID, DueDate: &due},
		}
		require.NoError(t, s.CreateTasks(ctx, batch))

		tasks, err := s.ListTasksByAuction(ctx, org, auction.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)

		require.NoError(t, s.UpdateTaskStatus(ctx, org, tasks[0].ID, models.TaskStatusDone))
		reloaded, err := s.GetTask(ctx, org, tasks[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, reloaded.Status)

		require.NoError(t, s.DeleteTasksByAuction(ctx, org, auction.ID))
		tasks, err = s.ListTasksByAuction(ctx, org, auction.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("calendar event link lookup", func(t *testing.T) {
		auction := &models.Auction{OrganizationId: org, Title: "Casa de vila", PipelineStage: models.PipelineStageAtivo}
		require.NoError(t, s.CreateAuction(ctx, auction))

		start := time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)
		event := &models.CalendarEvent{
			OrganizationId: org,
			Title:          "Leilao: Casa de vila - 1st round",
			StartTime:      start,
			EndTime:        start.Add(2 * time.Hour),
			AuctionId:      &auction.ID,
			DateField:      models.CalendarDateFieldFirst,
		}
		require.NoError(t, s.CreateCalendarEvent(ctx, event))

		found, err := s.FindCalendarEvent(ctx, org, auction.ID, models.CalendarDateFieldFirst)
		require.NoError(t, err)
		assert.Equal(t, event.ID, found.ID)

		_, err = s.FindCalendarEvent(ctx, org, auction.ID, models.CalendarDateFieldSecond)
		require.ErrorIs(t, err, store.ErrRecordNotFound)

		moved := start.AddDate(0, 0, 14)
		require.NoError(t, s.UpdateCalendarEvent(ctx, org, found.ID, map[string]interface{}{
			"start_time": moved,
			"end_time":   moved.Add(2 * time.Hour),
		}))
		updated, err := s.FindCalendarEvent(ctx, org, auction.ID, models.CalendarDateFieldFirst)
		require.NoError(t, err)
		assert.WithinDuration(t, moved, updated.StartTime, time.Second)
	})

	t.Run("pending intent transitions", func(t *testing.T) {
		intent := models.NewPendingIntent(ctx, models.IntentKindStageMove, org, 1, nil)
		require.NoError(t, s.CreatePendingIntent(ctx, intent))

		require.NoError(t, s.FailPendingIntent(ctx, intent.ID, "update_stage"))
		unfinished, err := s.ListUnfinishedIntents(ctx, org)
		require.NoError(t, err)
		require.NotEmpty(t, unfinished)

		var found bool
		for _, i := range unfinished {
			if i.ID == intent.ID {
				found = true
				assert.Equal(t, models.IntentStatusFailed, i.Status)
				assert.Equal(t, "update_stage", i.FailedStep)
			}
		}
		assert.True(t, found)
	})
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("auctions-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=auctions_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
