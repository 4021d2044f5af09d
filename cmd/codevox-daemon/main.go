package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"codevox/internal/audio"
	"codevox/internal/convo"
	"codevox/internal/gather"
	"codevox/internal/host"
	"codevox/internal/ipc"
	"codevox/internal/llm"
	"codevox/internal/notify"
	"codevox/internal/pipeline"
	"codevox/internal/proxy"
	"codevox/internal/speech"
	"codevox/internal/stt"
	"codevox/internal/translate"
	"codevox/internal/vision"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS proxy address for API traffic")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	hubURL := cli.StringP("hub", "u", "", "WebSocket hub URL (stdio when empty)")
	whisperModel := cli.StringP("whisper", "w", "third_party/whisper.cpp/models/ggml-base.bin", "Whisper model path")
	chatModel := cli.String("chat-model", llm.DefaultGroqModel, "Chat completion model")
	visionModel := cli.String("vision-model", vision.DefaultModel, "Vision model")
	chime := cli.String("chime", "chime.mp3", "Listening chime sound")
	socket := cli.String("socket", ipc.DefaultSocketPath, "Control socket path")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	groqKey := os.Getenv("GROQ_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if groqKey == "" || openaiKey == "" || geminiKey == "" {
		log.Error("GROQ_API_KEY, OPENAI_API_KEY and GEMINI_API_KEY must be set")
		os.Exit(1)
	}

	log.Debug("Loaded API keys")

	var httpClient *http.Client
	if *proxyAddr != "" {
		var err error
		httpClient, err = proxy.NewSocksClient(*proxyAddr, 0)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	chat := llm.New(groqKey, llm.GroqBaseURL, *chatModel, httpClient)

	vis, err := vision.New(context.Background(), geminiKey, *visionModel)
	if err != nil {
		log.Error("Failed to init vision client", "err", err)
		os.Exit(1)
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	whisper, err := stt.NewTranscriber(*whisperModel)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	log.Debug("Loaded whisper")

	var transport host.Transport
	if *hubURL != "" {
		ws, err := host.DialWS(*hubURL)
		if err != nil {
			log.Error("Failed to connect to hub", "url", *hubURL, "err", err)
			os.Exit(1)
		}
		defer ws.Close()
		transport = ws
	} else {
		transport = host.NewStdio(os.Stdin, os.Stdout)
	}

	speaker := speech.NewManager(
		speech.NewOpenAISynthesizer(openaiKey, httpClient),
		speech.OpenPortAudio,
	)

	ctl := pipeline.New(pipeline.Deps{
		Session:    convo.NewSession(pipeline.AssistantSystemPrompt),
		Chat:       chat,
		Vision:     vis,
		Translator: translate.NewTranslator(),
		Detector:   translate.Detector{},
		Clipboard:  gather.Clipboard{},
		Screen:     gather.Screenshotter{},
		Speaker:    speaker,
		Emitter:    host.NewEmitter(transport),
	})

	h := &hostHandler{
		ctl:     ctl,
		speaker: speaker,
		rec:     rec,
		whisper: whisper,
		chime:   *chime,
	}

	if err := ipc.StartServer(*socket, func(msg ipc.ControlMessage) {
		host.Dispatch(msg.Line, h)
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	if err := host.Run(transport, h); err != nil {
		log.Info("Host channel closed", "err", err)
	}
	speaker.Stop()
}

// hostHandler runs each utterance on a detached worker so the host loop
// keeps accepting commands, stopSpeaking included, while one is in flight.
type hostHandler struct {
	ctl     *pipeline.Controller
	speaker *speech.Manager
	rec     *audio.Recorder
	whisper *stt.Transcriber
	chime   string
}

func (h *hostHandler) StartListening() {
	go func() {
		if err := notify.Chime(h.chime); err != nil {
			log.Warn("Chime unavailable", "err", err)
		}

		log.Info("Listening")

		pcm, err := h.rec.Record()
		if err != nil {
			log.Error("Failed to record", "err", err)
			return
		}

		log.Info("Recorded", "samples", len(pcm))

		path := filepath.Join(os.TempDir(), "codevox-prompt.wav")
		if err := audio.WriteWAV(path, pcm, audio.SampleRate); err != nil {
			log.Error("Failed to save utterance", "err", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		res, err := h.whisper.TranscribeFile(ctx, path, "auto", 0)
		if err != nil {
			log.Error("Failed to transcribe", "err", err)
			return
		}

		log.Info("Transcribed", "text", res.Text)

		h.ctl.Process(context.Background(), res.Text, pipeline.OriginVoice)
	}()
}

func (h *hostHandler) ProcessText(text string) {
	go h.ctl.Process(context.Background(), text, pipeline.OriginText)
}

func (h *hostHandler) StopSpeaking() {
	h.speaker.Stop()
}
