package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"support-assistant-be/internal/constant"
	"support-assistant-be/internal/entity"
	"support-assistant-be/internal/model"
	"support-assistant-be/internal/repository/unitofwork"
	"support-assistant-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.Ticket{}, &model.TicketMessage{}))

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.TicketRepository())
	assert.NotNil(t, uow.TicketMessageRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Ticket round trip", func(t *testing.T) {
		ctx := context.Background()
		tickets := uow.TicketRepository()
		messages := uow.TicketMessageRepository()

		const testUser int64 = -9_000_001 // unlikely to collide with real data

		ticket, err := tickets.FindOpenByUserId(ctx, testUser)
		require.NoError(t, err)
		if ticket == nil {
			ticket = &entity.Ticket{UserId: testUser, Status: constant.TicketStatusOpen}
			require.NoError(t, tickets.Create(ctx, ticket))
		}

		require.NoError(t, messages.Create(ctx, &entity.TicketMessage{
			TicketId: ticket.Id,
			Role:     constant.TicketMessageRoleUser,
			Content:  "integration probe",
		}))

		history, err := messages.FindRecentByTicketId(ctx, ticket.Id, 5)
		require.NoError(t, err)
		assert.NotEmpty(t, history)

		updated, err := tickets.UpdateStatus(ctx, ticket.Id, constant.TicketStatusResolved)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, constant.TicketStatusResolved, updated.Status)
	})
}
