package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/responder"
	"mindbuddy/internal/session"
	"mindbuddy/internal/trend"
)

type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

var fixedNow = time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

func newTestServer() *MindBuddyMCPServer {
	sess := session.New(
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithRand(zeroRand{}),
	)
	return NewMindBuddyMCPServer(sess, zap.NewNop().Sugar())
}

func resultText(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestClassifyText(t *testing.T) {
	s := newTestServer()
	res, err := s.ClassifyText(context.Background(), nil, &mcp.CallToolParamsFor[ClassifyParams]{
		Arguments: ClassifyParams{Text: "so much pressure and deadlines, I feel overwhelmed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anxious", res.Meta["emotion"])
	assert.Equal(t, true, res.Meta["detected"])
	assert.Equal(t, false, res.Meta["crisis"])
	assert.Contains(t, resultText(t, res), "Anxious")

	res, err = s.ClassifyText(context.Background(), nil, &mcp.CallToolParamsFor[ClassifyParams]{
		Arguments: ClassifyParams{Text: "there is no point anymore"},
	})
	require.NoError(t, err)
	assert.Equal(t, false, res.Meta["detected"])
	assert.Equal(t, true, res.Meta["crisis"])
}

func TestRespond_RunsChatPipeline(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()

	res, err := s.Respond(ctx, nil, &mcp.CallToolParamsFor[RespondParams]{
		Arguments: RespondParams{Message: "I'm exhausted"},
	})
	require.NoError(t, err)
	assert.Equal(t, responder.Pool("tired")[0], resultText(t, res))
	assert.Equal(t, "emotion", res.Meta["kind"])
	assert.Equal(t, "tired", res.Meta["emotion"])

	logs := s.sess.RecentEmotionLogs(1)
	require.Len(t, logs, 1)
	assert.Equal(t, emotionlog.SourceChat, logs[0].Source)
	assert.Len(t, s.sess.Transcript(), 2)

	res, err = s.Respond(ctx, nil, &mcp.CallToolParamsFor[RespondParams]{
		Arguments: RespondParams{Message: "   "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestLogEmotion(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()

	res, err := s.LogEmotion(ctx, nil, &mcp.CallToolParamsFor[LogEmotionParams]{
		Arguments: LogEmotionParams{Emotion: " Calm ", Notes: "walk"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	e, ok := s.sess.CurrentMood()
	require.True(t, ok)
	assert.Equal(t, emotionlog.DefaultIntensity, e.Intensity)
	assert.Equal(t, e.ID, res.Meta["id"])
	assert.EqualValues(t, "calm", e.Emotion)

	res, err = s.LogEmotion(ctx, nil, &mcp.CallToolParamsFor[LogEmotionParams]{
		Arguments: LogEmotionParams{Emotion: "bored", Intensity: 3},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.LogEmotion(ctx, nil, &mcp.CallToolParamsFor[LogEmotionParams]{
		Arguments: LogEmotionParams{Emotion: "sad", Intensity: 12},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Len(t, s.sess.EmotionLogs(), 1)
}

func TestRecentEmotionsAndActivity(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	for _, c := range []string{"happy", "sad", "angry"} {
		_, err := s.LogEmotion(ctx, nil, &mcp.CallToolParamsFor[LogEmotionParams]{
			Arguments: LogEmotionParams{Emotion: c, Intensity: 4},
		})
		require.NoError(t, err)
	}

	res, err := s.RecentEmotions(ctx, nil, &mcp.CallToolParamsFor[LimitParams]{Arguments: LimitParams{Limit: 2}})
	require.NoError(t, err)
	var logs []emotionlog.Entry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &logs))
	require.Len(t, logs, 2)
	assert.EqualValues(t, "angry", logs[0].Emotion)
	assert.EqualValues(t, "sad", logs[1].Emotion)

	res, err = s.RecentActivity(ctx, nil, &mcp.CallToolParamsFor[LimitParams]{})
	require.NoError(t, err)
	var acts []activity.Entry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &acts))
	require.Len(t, acts, 3)
	assert.Equal(t, "Logged emotion: angry", acts[0].Message)
}

func TestDailyAverages(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	for _, n := range []int{7, 8} {
		_, err := s.LogEmotion(ctx, nil, &mcp.CallToolParamsFor[LogEmotionParams]{
			Arguments: LogEmotionParams{Emotion: "happy", Intensity: n},
		})
		require.NoError(t, err)
	}

	res, err := s.DailyAverages(ctx, nil, &mcp.CallToolParamsFor[DailyAveragesParams]{})
	require.NoError(t, err)
	var points []trend.Point
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &points))
	require.Len(t, points, trend.Days)
	assert.Equal(t, 7.5, points[trend.Days-1].AvgIntensity)
	assert.Equal(t, 0.0, points[0].AvgIntensity)
}

func TestSetNotifications(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	off := false

	res, err := s.SetNotifications(ctx, nil, &mcp.CallToolParamsFor[NotificationsParams]{
		Arguments: NotificationsParams{Enabled: &off},
	})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Check-in notifications: off")
	assert.False(t, s.sess.NotificationsEnabled())
	assert.True(t, s.sess.Settings().EnableCoping)

	res, err = s.SetNotifications(ctx, nil, &mcp.CallToolParamsFor[NotificationsParams]{
		Arguments: NotificationsParams{Motivational: &off, Coping: &off},
	})
	require.NoError(t, err)
	st := s.sess.Settings()
	assert.False(t, st.EnableMotivational)
	assert.False(t, st.EnableCoping)
	assert.False(t, st.EnableNotifications)
	assert.Equal(t, false, res.Meta["enable_coping"])
}
