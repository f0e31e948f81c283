package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err)
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err)
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if s.natsContainer != nil {
		require.NoError(s.T(), testcontainers.TerminateContainer(s.natsContainer))
	}
}

func TestPublisherSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestEnsureStream_Idempotent() {
	name := "STREAM_" + uuid.NewString()

	first, err := EnsureStream(s.ctx, s.js, name, "idem."+uuid.NewString())
	s.Require().NoError(err)
	second, err := EnsureStream(s.ctx, s.js, name, "ignored.subject")
	s.Require().NoError(err)

	s.Equal(first.CachedInfo().Config.Name, second.CachedInfo().Config.Name)
}

func (s *PublisherSuite) TestPublish_ReachesStream() {
	// given
	name := "STREAM_" + uuid.NewString()
	stream, err := EnsureStream(s.ctx, s.js, name, messaging.StreamSubjects)
	s.Require().NoError(err)
	publisher := NewNatsPublisher(s.js)
	event := events.ProductsChangedEvent{Action: events.ActionCreated, ProductID: uuid.NewString(), ChangedAt: time.Now().UTC()}

	// when
	err = publisher.Publish(s.ctx, event)

	// then
	s.Require().NoError(err)
	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ProductsChangedSubject)
	s.Require().NoError(err)
	var got events.ProductsChangedEvent
	s.Require().NoError(json.Unmarshal(msg.Data, &got))
	s.Equal(event.ProductID, got.ProductID)
	s.Require().NoError(s.js.DeleteStream(s.ctx, name))
}
