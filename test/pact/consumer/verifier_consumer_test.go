//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	verifierclient "github.com/vendibd/vendi-server/internal/clients/http/verifier"
	pacttest "github.com/vendibd/vendi-server/test/pact"
)

// The contract pins the classify endpoint shape the order flow depends on: a
// verdict always comes back as JSON, and a genuine verdict always carries a
// readable denomination.
func TestBanknoteVerifierContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	requestBody := matchers.Map{
		"image": matchers.Like(pacttest.ExampleNoteImageBase64()),
	}
	jsonContentType := matchers.Regex("application/json", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateGenuineNote).
		UponReceiving("a classification request for a genuine note").
		WithRequest("POST", "/v1/classify", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(requestBody)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"denomination": matchers.Decimal(20.0),
				"isGenuine":    matchers.Like(true),
				"confidence":   matchers.Decimal(0.97),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := newVerifierClient(config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		verdict := client.Verify(ctx, pacttest.ExampleNoteImage())
		if !verdict.IsGenuine {
			return fmt.Errorf("expected genuine verdict, got rejection: %s", verdict.Reason)
		}
		if verdict.Denomination.IsZero() {
			return fmt.Errorf("expected a denomination on a genuine verdict")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestBanknoteVerifierContract_CounterfeitNote(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	pact.AddInteraction().
		Given(pacttest.StateCounterfeitNote).
		UponReceiving("a classification request for a counterfeit note").
		WithRequest("POST", "/v1/classify", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"image": matchers.Like(pacttest.ExampleNoteImageBase64()),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.Regex("application/json", "application\\/json(?:;\\s?charset=utf-8)?"))
			b.JSONBody(matchers.Map{
				"isGenuine": matchers.Like(false),
				"reason":    matchers.Like("security thread missing"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := newVerifierClient(config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		verdict := client.Verify(ctx, pacttest.ExampleNoteImage())
		if verdict.IsGenuine {
			return fmt.Errorf("expected rejection verdict")
		}
		if verdict.Reason == "" {
			return fmt.Errorf("expected a rejection reason")
		}
		return nil
	})
	require.NoError(t, err)
}

func newVerifierClient(config pactconsumer.MockServerConfig) (*verifierclient.Client, error) {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	return verifierclient.NewClient(
		fmt.Sprintf("http://%s:%d", host, config.Port),
		verifierclient.WithTimeout(5*time.Second),
	)
}
