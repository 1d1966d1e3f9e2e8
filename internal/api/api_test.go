package api

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_KeepsEventPayload(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &Event{Collection: "containers", Op: "updated", ID: "c1", Data: []byte(`{"status":"Docked"}`), At: at}

	b, err := jsonCodec{}.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":{"status":"Docked"}`)

	var out Event
	require.NoError(t, jsonCodec{}.Unmarshal(b, &out))
	assert.Equal(t, *in, out)
}

func TestServiceDesc_MethodNamesMatchConstants(t *testing.T) {
	consts := []string{
		MethodPing, MethodLogin, MethodRefreshToken, MethodLogout, MethodMe, MethodResetPassword,
		MethodListUsers, MethodCreateUser, MethodChangeRole, MethodDeleteUser, MethodSendPasswordReset,
		MethodListContainers, MethodAddContainer, MethodUpdateContainerStatus, MethodDeleteContainer, MethodExportContainers,
		MethodListBookings, MethodAddBooking, MethodDeleteBooking,
		MethodListSettings, MethodAddSetting, MethodDeleteSetting,
	}
	require.Len(t, ServiceDesc.Methods, len(consts))
	for i, m := range ServiceDesc.Methods {
		assert.Equal(t, consts[i], "/"+ServiceName+"/"+m.MethodName)
	}

	require.Len(t, ServiceDesc.Streams, 1)
	assert.True(t, strings.HasSuffix(MethodWatch, "/"+ServiceDesc.Streams[0].StreamName))
	assert.True(t, ServiceDesc.Streams[0].ServerStreams)
}
