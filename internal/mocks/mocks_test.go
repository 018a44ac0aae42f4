package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/domain/model"
)

// The generated mocks must keep satisfying the ports they stand in for.
var (
	_ core.Crawler           = (*MockCrawler)(nil)
	_ core.QueueBuilder      = (*MockQueueBuilder)(nil)
	_ core.CompanyRepository = (*MockCompanyRepository)(nil)
)

func TestMockCrawlerRecordsCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	crawler := NewMockCrawler(ctrl)
	entry := model.QueueEntry{CompanyID: 42, CompanyName: "Acme"}
	crawler.EXPECT().
		Crawl(gomock.Any(), entry).
		Return(model.CrawlResult{CompanyID: 42, Success: true})

	result := crawler.Crawl(context.Background(), entry)
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.CompanyID)
}

func TestMockQueueBuilderReturnsConfiguredQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	builder := NewMockQueueBuilder(ctrl)
	builder.EXPECT().
		Build(gomock.Any(), model.QueueModeStale).
		Return([]model.QueueEntry{{CompanyID: 1}, {CompanyID: 2}}, nil)

	entries, err := builder.Build(context.Background(), model.QueueModeStale)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
