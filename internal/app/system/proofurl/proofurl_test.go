package proofurl_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dalemusser/eventdesk/internal/app/system/proofurl"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestLocal_URL(t *testing.T) {
	l := proofurl.Local{BaseURL: "https://cdn.example.com/proofs/"}
	got, err := l.URL(context.Background(), "/G1/screen shot.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/proofs/G1/screen%20shot.png", got)

	got, err = proofurl.Local{}.URL(context.Background(), "G1.png")
	require.NoError(t, err)
	require.Equal(t, "/G1.png", got)
}

func TestResolve_NoProofIsNotAnError(t *testing.T) {
	c := proofurl.NewCached(proofurl.Local{BaseURL: "/files"}, time.Minute)
	for _, p := range []*string{nil, ptr(""), ptr("   ")} {
		proof, err := c.Resolve(context.Background(), p)
		require.NoError(t, err)
		require.False(t, proof.HasProof)
		require.Empty(t, proof.URL)
	}
}

type countingResolver struct {
	calls int
	err   error
}

func (c *countingResolver) URL(_ context.Context, p string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "https://signed/" + p, nil
}

func TestCached_ReusesResolvedURL(t *testing.T) {
	next := &countingResolver{}
	c := proofurl.NewCached(next, time.Minute)

	for i := 0; i < 3; i++ {
		proof, err := c.Resolve(context.Background(), ptr("G1.png"))
		require.NoError(t, err)
		require.Equal(t, "https://signed/G1.png", proof.URL)
	}
	require.Equal(t, 1, next.calls)
}

func TestCached_FailureIsDistinctFromNoProof(t *testing.T) {
	c := proofurl.NewCached(&countingResolver{err: errors.New("denied")}, time.Minute)
	proof, err := c.Resolve(context.Background(), ptr("G1.png"))
	require.Error(t, err)
	require.True(t, proof.HasProof)
}

func TestS3_PresignsWithoutNetwork(t *testing.T) {
	client := s3.New(s3.Options{
		Region: "ap-south-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
	})
	r := proofurl.NewS3(client, "fest-proofs", "payments", 10*time.Minute)

	raw, err := r.URL(context.Background(), "G1/proof.png")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.True(t, strings.Contains(u.Host, "fest-proofs") || strings.HasPrefix(u.Path, "/fest-proofs"))
	require.True(t, strings.HasSuffix(u.Path, "payments/G1/proof.png"))
	require.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := proofurl.New(context.Background(), proofurl.Config{Backend: "ftp"})
	require.Error(t, err)

	_, err = proofurl.New(context.Background(), proofurl.Config{Backend: "s3"})
	require.Error(t, err, "bucket required")
}
