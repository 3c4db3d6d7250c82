package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mindbuddy/internal/config"
	"mindbuddy/internal/emotion"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/logging"
	"mindbuddy/internal/session"
	"mindbuddy/internal/storage"
)

const defaultListSize = 10

type ClassifyParams struct {
	Text string `json:"text" mcp:"free text to classify"`
}

type RespondParams struct {
	Message string `json:"message" mcp:"user chat message; it is logged like a chat message"`
}

type LogEmotionParams struct {
	Emotion   string `json:"emotion" mcp:"one of happy, sad, anxious, angry, neutral, tired, calm, stressed"`
	Intensity int    `json:"intensity,omitempty" mcp:"intensity 1-10 (default: 5)"`
	Notes     string `json:"notes,omitempty" mcp:"optional notes"`
}

type LimitParams struct {
	Limit int `json:"limit,omitempty" mcp:"maximum number of entries to return (default: 10)"`
}

type DailyAveragesParams struct{}

// NotificationsParams leaves a setting unchanged when its field is omitted.
type NotificationsParams struct {
	Enabled      *bool `json:"enabled,omitempty" mcp:"whether simulated check-in notifications are on"`
	Motivational *bool `json:"motivational,omitempty" mcp:"whether motivational messages are on"`
	Coping       *bool `json:"coping,omitempty" mcp:"whether coping reminders are on"`
}

// MindBuddyMCPServer exposes one companion session as MCP tools.
type MindBuddyMCPServer struct {
	sess *session.Session
	log  *zap.SugaredLogger
}

func NewMindBuddyMCPServer(sess *session.Session, log *zap.SugaredLogger) *MindBuddyMCPServer {
	return &MindBuddyMCPServer{sess: sess, log: log}
}

func textResult(text string, meta map[string]interface{}) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		Meta:    meta,
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "❌ " + fmt.Sprintf(format, args...)}},
	}
}

func jsonResult(v any, meta map[string]interface{}) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data), meta), nil
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultListSize
	}
	return n
}

func (s *MindBuddyMCPServer) ClassifyText(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ClassifyParams]) (*mcp.CallToolResultFor[any], error) {
	text := params.Arguments.Text
	cat, ok := s.sess.Classify(text)
	crisis := s.sess.DetectsCrisis(text)

	msg := "No emotion detected"
	if ok {
		msg = "Detected emotion: " + cat.Display()
	}
	if crisis {
		msg += "\n⚠️ Crisis language detected"
	}
	return textResult(msg, map[string]interface{}{
		"emotion":  string(cat),
		"detected": ok,
		"crisis":   crisis,
	}), nil
}

// Respond runs the full chat pipeline and delivers the reply immediately.
func (s *MindBuddyMCPServer) Respond(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[RespondParams]) (*mcp.CallToolResultFor[any], error) {
	reply, err := s.sess.OnUserMessage(ctx, params.Arguments.Message)
	if err != nil {
		return errorResult("%v", err), nil
	}
	s.sess.DeliverReply(ctx, reply)

	meta := map[string]interface{}{"kind": string(reply.Kind)}
	if reply.Detected != nil {
		meta["emotion"] = string(reply.Detected.Emotion)
		s.log.Infof("🎯 detected %s via MCP", reply.Detected.Emotion)
	}
	return textResult(reply.Text, meta), nil
}

func (s *MindBuddyMCPServer) LogEmotion(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[LogEmotionParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	intensity := args.Intensity
	if intensity == 0 {
		intensity = emotionlog.DefaultIntensity
	}
	cat, _ := emotion.Parse(args.Emotion)
	e, err := s.sess.LogEmotion(ctx, cat, intensity, args.Notes)
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			return errorResult("%v", err), nil
		}
		return nil, err
	}
	return textResult(fmt.Sprintf("✅ Logged %s (%d/10)", e.Emotion.Display(), e.Intensity), map[string]interface{}{
		"id": e.ID,
	}), nil
}

func (s *MindBuddyMCPServer) RecentEmotions(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[LimitParams]) (*mcp.CallToolResultFor[any], error) {
	logs := s.sess.RecentEmotionLogs(limitOrDefault(params.Arguments.Limit))
	return jsonResult(logs, map[string]interface{}{"count": len(logs)})
}

func (s *MindBuddyMCPServer) DailyAverages(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[DailyAveragesParams]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(s.sess.DailyAverages(s.sess.Now()), nil)
}

func (s *MindBuddyMCPServer) RecentActivity(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[LimitParams]) (*mcp.CallToolResultFor[any], error) {
	acts := s.sess.RecentActivity(limitOrDefault(params.Arguments.Limit))
	return jsonResult(acts, map[string]interface{}{"count": len(acts)})
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (s *MindBuddyMCPServer) SetNotifications(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[NotificationsParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	st := s.sess.Settings()
	if args.Enabled != nil {
		st.EnableNotifications = *args.Enabled
	}
	if args.Motivational != nil {
		st.EnableMotivational = *args.Motivational
	}
	if args.Coping != nil {
		st.EnableCoping = *args.Coping
	}
	s.sess.UpdateSettings(ctx, st)

	msg := fmt.Sprintf("Check-in notifications: %s\nMotivational messages: %s\nCoping reminders: %s",
		onOff(st.EnableNotifications), onOff(st.EnableMotivational), onOff(st.EnableCoping))
	return textResult(msg, map[string]interface{}{
		"enable_notifications": st.EnableNotifications,
		"enable_motivational":  st.EnableMotivational,
		"enable_coping":        st.EnableCoping,
	}), nil
}

func (s *MindBuddyMCPServer) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_text",
		Description: "Detects the emotion in a text and whether it contains crisis language",
	}, s.ClassifyText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "respond",
		Description: "Sends a chat message to the companion and returns its reply",
	}, s.Respond)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_emotion",
		Description: "Logs an emotion with intensity and optional notes",
	}, s.LogEmotion)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_emotions",
		Description: "Returns the most recent emotion logs, newest first",
	}, s.RecentEmotions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "daily_averages",
		Description: "Returns average intensity per day for the last 7 days",
	}, s.DailyAverages)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_activity",
		Description: "Returns the most recent activity feed entries, newest first",
	}, s.RecentActivity)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_notifications",
		Description: "Updates notification settings: check-ins, motivational messages and coping reminders",
	}, s.SetNotifications)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("❌ failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		log.Fatalf("❌ failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	sink, err := storage.NewSink(ctx, storage.Options{
		Backend:       cfg.StorageBackend,
		FilePath:      cfg.StatePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisKey:      cfg.RedisKey,
	})
	if err != nil {
		logger.Warnf("⚠️ storage backend %q unavailable, running in memory: %v", cfg.StorageBackend, err)
		sink = storage.NoopSink{}
	}

	sess := session.New(session.WithSink(sink), session.WithLogger(logger.Named("session")))
	sess.Load(ctx)

	logger.Infof("🚀 Starting MindBuddy MCP Server")
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mindbuddy-mcp",
		Version: "1.0.0",
	}, nil)
	NewMindBuddyMCPServer(sess, logger.Named("mcp")).Register(server)
	logger.Infof("📋 Registered tools: classify_text, respond, log_emotion, recent_emotions, daily_averages, recent_activity, set_notifications")

	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		logger.Fatalf("❌ MindBuddy MCP Server failed: %v", err)
	}
}
