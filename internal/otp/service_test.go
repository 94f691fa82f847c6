package otp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts challenge delivery and comparison without a gateway
type fakeProvider struct {
	sendErr  error
	checkErr error
	sends    int
	code     string // the code that CheckChallenge accepts
}

func (f *fakeProvider) SendChallenge(ctx context.Context, phone string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sends++
	return fmt.Sprintf("session-%d", f.sends), nil
}

func (f *fakeProvider) CheckChallenge(ctx context.Context, token, code string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return code == f.code, nil
}

func newTestService(provider Provider) (*Service, *time.Time) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := base
	svc := NewService(NewMemoryStore(), provider)
	svc.now = func() time.Time { return now }
	return svc, &now
}

const testPhone = "+919999999999"

func TestVerifyWithoutRecord(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "123456"})

	res := svc.Verify(context.Background(), testPhone, "123456")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no OTP found")
}

func TestSendThenStatus(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "123456"})

	res := svc.Send(context.Background(), testPhone, false)
	require.True(t, res.Success)
	require.NotEmpty(t, res.SessionToken)

	status := svc.GetStatus(testPhone)
	assert.True(t, status.HasActiveOTP)
	assert.Greater(t, status.RemainingSeconds, 0)
	assert.LessOrEqual(t, status.RemainingSeconds, int(DefaultTTL.Seconds()))
}

func TestDuplicateSendRejected(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	svc, now := newTestService(provider)

	first := svc.Send(context.Background(), testPhone, false)
	require.True(t, first.Success)

	*now = now.Add(2 * time.Minute)
	second := svc.Send(context.Background(), testPhone, false)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "wait 480 seconds")

	// The original record is untouched: still one provider send, same token
	assert.Equal(t, 1, provider.sends)
	status := svc.GetStatus(testPhone)
	assert.Equal(t, 480, status.RemainingSeconds)
}

func TestExplicitResendReplacesRecord(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	svc, now := newTestService(provider)

	first := svc.Send(context.Background(), testPhone, false)
	require.True(t, first.Success)

	// Burn an attempt so we can see the resend reset it
	bad := svc.Verify(context.Background(), testPhone, "000000")
	require.False(t, bad.Success)

	*now = now.Add(5 * time.Minute)
	second := svc.Send(context.Background(), testPhone, true)
	require.True(t, second.Success)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)

	// Fresh TTL and a clean attempt budget
	status := svc.GetStatus(testPhone)
	assert.Equal(t, int(DefaultTTL.Seconds()), status.RemainingSeconds)
	for i := 0; i < DefaultMaxAttempts-1; i++ {
		res := svc.Verify(context.Background(), testPhone, "000000")
		assert.False(t, res.Success)
	}
	assert.True(t, svc.GetStatus(testPhone).HasActiveOTP)
}

func TestVerifySuccessConsumesRecord(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "424242"})

	require.True(t, svc.Send(context.Background(), testPhone, false).Success)

	res := svc.Verify(context.Background(), testPhone, "424242")
	assert.True(t, res.Success)

	assert.False(t, svc.GetStatus(testPhone).HasActiveOTP)

	// Not replayable
	again := svc.Verify(context.Background(), testPhone, "424242")
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "no OTP found")
}

func TestAttemptExhaustionPurgesRecord(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "424242"})

	require.True(t, svc.Send(context.Background(), testPhone, false).Success)

	res := svc.Verify(context.Background(), testPhone, "111111")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "2 attempts remaining")

	res = svc.Verify(context.Background(), testPhone, "222222")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "1 attempts remaining")

	res = svc.Verify(context.Background(), testPhone, "333333")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no attempts remaining")

	// Even the correct code is dead now
	res = svc.Verify(context.Background(), testPhone, "424242")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no OTP found")
}

func TestVerifyAfterExpiry(t *testing.T) {
	svc, now := newTestService(&fakeProvider{code: "424242"})

	require.True(t, svc.Send(context.Background(), testPhone, false).Success)

	*now = now.Add(DefaultTTL)
	res := svc.Verify(context.Background(), testPhone, "424242")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "expired")

	// Expiry discovery deletes the record, so a new send is allowed
	assert.False(t, svc.GetStatus(testPhone).HasActiveOTP)
	assert.True(t, svc.Send(context.Background(), testPhone, false).Success)
}

func TestStatusLazyCleanup(t *testing.T) {
	svc, now := newTestService(&fakeProvider{code: "424242"})

	require.True(t, svc.Send(context.Background(), testPhone, false).Success)
	*now = now.Add(DefaultTTL + time.Second)

	status := svc.GetStatus(testPhone)
	assert.False(t, status.HasActiveOTP)
	assert.Zero(t, status.RemainingSeconds)
}

func TestProviderSendFailureLeavesNoRecord(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{sendErr: errors.New("gateway down")})

	res := svc.Send(context.Background(), testPhone, false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "failed to send")
	assert.False(t, svc.GetStatus(testPhone).HasActiveOTP)
}

func TestProviderCheckFailureCountsAsMismatch(t *testing.T) {
	provider := &fakeProvider{code: "424242"}
	svc, _ := newTestService(provider)

	require.True(t, svc.Send(context.Background(), testPhone, false).Success)

	provider.checkErr = errors.New("gateway timeout")
	res := svc.Verify(context.Background(), testPhone, "424242")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "invalid OTP")
	assert.Contains(t, res.Message, "2 attempts remaining")

	// Once the gateway recovers, the surviving record still verifies
	provider.checkErr = nil
	res = svc.Verify(context.Background(), testPhone, "424242")
	assert.True(t, res.Success)
}

func TestPhoneCanonicalization(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "424242"})

	// Same subscriber, three spellings
	require.True(t, svc.Send(context.Background(), "+91 99999-99999", false).Success)
	assert.True(t, svc.GetStatus("9999999999").HasActiveOTP)

	res := svc.Verify(context.Background(), "(+91) 99999 99999", "424242")
	assert.True(t, res.Success)
}

func TestSendRejectsEmptyPhone(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{code: "424242"})

	res := svc.Send(context.Background(), "  - () ", false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "phone number is required")
}

func TestCanonicalPhone(t *testing.T) {
	cases := map[string]string{
		"9999999999":       "+919999999999",
		"919999999999":     "+919999999999",
		"+919999999999":    "+919999999999",
		"+91 99999-99999":  "+919999999999",
		"(91) 99999 99999": "+919999999999",
		"+14155550123":     "+14155550123",
		"":                 "",
		"+":                "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CanonicalPhone(raw), "raw=%q", raw)
	}
}
