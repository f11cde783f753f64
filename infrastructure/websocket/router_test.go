package websocket

import (
	"chat-signal/domain"
	"chat-signal/errors"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecode_Register_Online_Accepts_Both_Shapes(t *testing.T) {
	req := require.New(t)

	for _, frame := range []string{
		`{"event":"register-online","data":"alice"}`,
		`{"event":"register-online","data":{"userId":"alice"}}`,
		`{"event":"user-online","data":" alice "}`,
	} {
		cmd, err := Decode([]byte(frame))
		req.NoError(err, frame)
		req.Equal(domain.RegisterOnlineCommand{UserID: "alice"}, cmd)
	}
}

func TestDecode_Send_Message(t *testing.T) {
	req := require.New(t)

	cmd, err := Decode([]byte(`{"event":"send-message","data":{"senderId":"alice","receiverId":"bob","content":"hi","tempId":"t-1"}}`))

	req.NoError(err)
	req.Equal(domain.SendMessageCommand{
		SenderID: "alice", ReceiverID: "bob", Content: "hi", Type: domain.MessageText, TempID: "t-1",
	}, cmd)
}

func TestDecode_Message_Read_Bare_Id(t *testing.T) {
	req := require.New(t)
	id := uuid.New()

	cmd, err := Decode([]byte(`{"event":"message-read","data":"` + id.String() + `"}`))

	req.NoError(err)
	req.Equal(domain.MarkReadCommand{MessageID: id}, cmd)
}

func TestDecode_Signals_Keep_Payload_Opaque(t *testing.T) {
	req := require.New(t)

	cmd, err := Decode([]byte(`{"event":"ice-candidate","data":{"to":"conn-2","candidate":{"sdpMid":"0","candidate":"abc"}}}`))

	req.NoError(err)
	relay := cmd.(domain.RelaySignalCommand)
	req.Equal(domain.SignalCandidate, relay.Kind)
	req.Equal("conn-2", relay.To)
	req.JSONEq(`{"sdpMid":"0","candidate":"abc"}`, string(relay.Payload))

	cmd, err = Decode([]byte(`{"event":"offer","data":{"to":"conn-2","roomId":"r1","offer":{"sdp":"v=0"}}}`))
	req.NoError(err)
	req.Equal("r1", cmd.(domain.RelaySignalCommand).RoomID)
	req.Equal(json.RawMessage(`{"sdp":"v=0"}`), cmd.(domain.RelaySignalCommand).Payload)
}

func TestDecode_Call_Control_Without_Data(t *testing.T) {
	req := require.New(t)

	cmd, err := Decode([]byte(`{"event":"end-call"}`))

	req.NoError(err)
	req.Equal(domain.EndCallCommand{}, cmd)
}

func TestDecode_Room_Membership(t *testing.T) {
	req := require.New(t)

	cmd, err := Decode([]byte(`{"event":"join-call","data":{"roomId":"r1","userId":"alice"}}`))
	req.NoError(err)
	req.Equal(domain.JoinRoomCommand{RoomID: "r1", UserID: "alice"}, cmd)

	cmd, err = Decode([]byte(`{"event":"leave-call","data":{"roomId":"r1","userId":"alice"}}`))
	req.NoError(err)
	req.Equal(domain.LeaveRoomCommand{RoomID: "r1", UserID: "alice"}, cmd)

	_, err = Decode([]byte(`{"event":"join-call"}`))
	req.ErrorIs(err, errors.ErrValidation)
}

func TestDecode_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	for _, frame := range []string{
		`not json`,
		`{"event":"dance","data":{}}`,
		`{"event":"send-message"}`,
		`{"event":"register-online","data":42}`,
	} {
		_, err := Decode([]byte(frame))
		req.ErrorIs(err, errors.ErrValidation, frame)
	}
}
