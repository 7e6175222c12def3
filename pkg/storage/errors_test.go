package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string { return e.code }
func (e *mockAPIError) ErrorMessage() string { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want error
	}{
		{name: "NoSuchKey code", err: &mockAPIError{code: "NoSuchKey"}, want: ErrNotFound},
		{name: "NoSuchBucket code", err: &mockAPIError{code: "NoSuchBucket"}, want: ErrNotFound},
		{name: "AccessDenied code", err: &mockAPIError{code: "AccessDenied"}, want: ErrAccessDenied},
		{name: "Forbidden code", err: &mockAPIError{code: "Forbidden"}, want: ErrAccessDenied},
		{name: "typed NoSuchKey", err: &types.NoSuchKey{}, want: ErrNotFound},
		{name: "other error uses fallback", err: errors.New("network down"), want: ErrUploadFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wrapped := wrapS3Error(tc.err, ErrUploadFailed)
			require.ErrorIs(t, wrapped, tc.want)
			require.Contains(t, wrapped.Error(), tc.err.Error())
		})
	}
}
