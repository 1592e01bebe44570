package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nadzzz/kisanvani/internal/errorsx"
	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
	"github.com/nadzzz/kisanvani/internal/message"
	"github.com/nadzzz/kisanvani/internal/snapshot"
	"github.com/nadzzz/kisanvani/internal/transport"
)

type chatRequest struct {
	Query string `json:"query" example:"ariyude vila ethrayanu?"`
}

type urlRequest struct {
	URL   string `json:"url" example:"http://localhost:8080/uploads/upload-20240601-090503-3f2a.mp3"`
	Speak *bool  `json:"speak,omitempty"`
}

type speechToTextResponse struct {
	Transcript  string `json:"transcript"`
	Language    string `json:"language"`
	Fallback    bool   `json:"fallback"`
	EnglishText string `json:"english_text,omitempty"`
	Success     bool   `json:"success"`
}

type textToSpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type textToSpeechResponse struct {
	AudioFile   string `json:"audio_file"`
	AudioURL    string `json:"audio_url"`
	ContentType string `json:"content_type"`
	Success     bool   `json:"success"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty" example:"ml"`
	Target string `json:"target,omitempty" example:"en"`
}

type translateResponse struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Success        bool   `json:"success"`
}

type historyResponse struct {
	History []message.TurnView `json:"history"`
	Total   int                `json:"total"`
}

type statusResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Features  []string `json:"features"`
	Timestamp string   `json:"timestamp"`
}

// handleAdvise runs a turn from any single source.
//
// @Summary     Ask for advice
// @Description Runs one advisory turn. Send JSON with exactly one of query, url or base64 audio,
// @Description or multipart/form-data with a query field or an audio file. Set speak to attach synthesized speech.
// @Tags        advice
// @Accept      json
// @Accept      mpfd
// @Produce     json
// @Param       request  body      message.TurnRequest  false  "Turn request (JSON form)"
// @Param       audio    formData  file                 false  "Recorded query (multipart form)"
// @Param       query    formData  string               false  "Inline query (multipart form)"
// @Param       speak    formData  bool                 false  "Attach synthesized speech"
// @Success     200  {object}  message.AdviceResult
// @Failure     400  {object}  errorResponse  "Empty query or more than one source"
// @Failure     415  {object}  errorResponse  "Unsupported audio format"
// @Failure     422  {object}  errorResponse  "Speech could not be recognized"
// @Failure     500  {object}  errorResponse  "Service failure"
// @Failure     504  {object}  errorResponse  "Upstream timeout"
// @Router      /api/advise [post]
func (t *Transport) handleAdvise(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := t.readTurn(r)
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		t.runTurn(w, r, svc, req)
	}
}

// handleChat runs a text turn.
//
// @Summary     Chat with the advisor
// @Description Text turn. The /api/chat-with-audio variant also returns synthesized speech.
// @Tags        advice
// @Accept      json
// @Produce     json
// @Param       request  body      chatRequest  true  "Farmer query"
// @Success     200  {object}  message.AdviceResult
// @Failure     400  {object}  errorResponse
// @Failure     500  {object}  errorResponse
// @Router      /api/chat [post]
// @Router      /api/chat-with-audio [post]
func (t *Transport) handleChat(svc transport.Service, speak bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		if err := decodeJSON(r, &body); err != nil {
			t.writeError(w, r, err)
			return
		}
		if strings.TrimSpace(body.Query) == "" {
			t.writeError(w, r, errorsx.New(errorsx.ReasonEmptyQuery, "no query provided"))
			return
		}
		t.runTurn(w, r, svc, &message.TurnRequest{Text: body.Query, Speak: speak})
	}
}

// handleURLToResponse runs a turn from a remote resource.
//
// @Summary     Answer a query stored at a URL
// @Description Fetches remote audio or a web page, answers it and speaks the answer unless speak is false.
// @Tags        advice
// @Accept      json
// @Produce     json
// @Param       request  body      urlRequest  true  "Remote resource"
// @Success     200  {object}  message.AdviceResult
// @Failure     400  {object}  errorResponse
// @Failure     502  {object}  errorResponse  "Remote content could not be fetched"
// @Router      /api/url_to_response [post]
func (t *Transport) handleURLToResponse(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body urlRequest
		if err := decodeJSON(r, &body); err != nil {
			t.writeError(w, r, err)
			return
		}
		if strings.TrimSpace(body.URL) == "" {
			t.writeError(w, r, errorsx.New(errorsx.ReasonEmptyQuery, "no url provided"))
			return
		}
		speak := true
		if body.Speak != nil {
			speak = *body.Speak
		}
		t.runTurn(w, r, svc, &message.TurnRequest{URL: body.URL, Speak: speak})
	}
}

func (t *Transport) runTurn(w http.ResponseWriter, r *http.Request, svc transport.Service, req *message.TurnRequest) {
	result, err := svc.HandleTurn(r.Context(), req)
	if err != nil {
		t.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readTurn decodes a turn from a JSON or multipart body.
func (t *Transport) readTurn(r *http.Request) (*message.TurnRequest, error) {
	if !isMultipart(r) {
		var req message.TurnRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	data, hint, err := readFormFile(r, "audio")
	if err != nil && err != http.ErrMissingFile {
		return nil, err
	}
	return &message.TurnRequest{
		Text:        r.FormValue("query"),
		URL:         r.FormValue("url"),
		Audio:       data,
		ContentType: hint,
		Speak:       formBool(r.FormValue("speak")),
	}, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readFormFile returns the named file part and a format hint taken from its
// content type or, failing that, its extension.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", errorsx.Wrap(err, errorsx.ReasonBadRequest)
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, "", err
		}
		return nil, "", errorsx.Wrap(err, errorsx.ReasonBadRequest)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", errorsx.Wrap(err, errorsx.ReasonBadRequest)
	}
	hint := hdr.Header.Get("Content-Type")
	if hint == "" || hint == "application/octet-stream" {
		hint = filepath.Ext(hdr.Filename)
	}
	return data, hint, nil
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// handleSpeechToText transcribes an uploaded recording.
//
// @Summary     Transcribe speech
// @Description Recognizes the recording in the primary language, falling back to the secondary language.
// @Description When a translator is configured, non-English transcripts also carry an English rendering.
// @Tags        speech
// @Accept      mpfd
// @Produce     json
// @Param       audio  formData  file  true  "Recording"
// @Success     200  {object}  speechToTextResponse
// @Failure     400  {object}  errorResponse  "No audio file provided"
// @Failure     422  {object}  errorResponse  "Speech could not be recognized"
// @Router      /api/speech-to-text [post]
func (t *Transport) handleSpeechToText(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, hint, err := readFormFile(r, "audio")
		if err == http.ErrMissingFile || (err == nil && len(data) == 0) {
			t.writeError(w, r, errorsx.New(errorsx.ReasonBadRequest, "no audio file provided"))
			return
		}
		if err != nil {
			t.writeError(w, r, err)
			return
		}

		tr, err := svc.Transcribe(r.Context(), data, hint)
		if err != nil {
			t.writeError(w, r, err)
			return
		}

		resp := speechToTextResponse{
			Transcript: tr.Text,
			Language:   tr.Language,
			Fallback:   tr.Fallback,
			Success:    true,
		}
		if t.opts.Translator != nil && !strings.EqualFold(tr.Language, "en") {
			english, err := t.opts.Translator.Translate(r.Context(), tr.Text, tr.Language, "en")
			if err != nil {
				t.logger.Warn("english rendering failed", "error", err)
			} else {
				resp.EnglishText = english
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleTextToSpeech synthesizes arbitrary text.
//
// @Summary     Synthesize speech
// @Description Renders text as speech in the given language (defaults to the response language).
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       request  body      textToSpeechRequest  true  "Text to speak"
// @Success     200  {object}  textToSpeechResponse
// @Failure     400  {object}  errorResponse  "No text provided"
// @Failure     500  {object}  errorResponse  "Synthesis failed"
// @Router      /api/text-to-speech [post]
func (t *Transport) handleTextToSpeech(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body textToSpeechRequest
		if err := decodeJSON(r, &body); err != nil {
			t.writeError(w, r, err)
			return
		}
		if strings.TrimSpace(body.Text) == "" {
			t.writeError(w, r, errorsx.New(errorsx.ReasonEmptyQuery, "no text provided"))
			return
		}
		art, err := svc.Speak(r.Context(), body.Text, body.Language)
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, textToSpeechResponse{
			AudioFile:   art.Name,
			AudioURL:    svc.AudioURL(art.Name),
			ContentType: art.ContentType,
			Success:     true,
		})
	}
}

// handleTranslate translates text between language codes.
//
// @Summary     Translate text
// @Description Source defaults to the primary language and target to English.
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       request  body      translateRequest  true  "Text and language codes"
// @Success     200  {object}  translateResponse
// @Failure     400  {object}  errorResponse
// @Failure     500  {object}  errorResponse
// @Router      /api/translate [post]
func (t *Transport) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateRequest
	if err := decodeJSON(r, &body); err != nil {
		t.writeError(w, r, err)
		return
	}
	if t.opts.Translator == nil {
		t.writeError(w, r, errorsx.New(errorsx.ReasonUnknown, "translation is not configured"))
		return
	}
	if body.Source == "" {
		body.Source = t.opts.PrimaryLanguage
	}
	if body.Target == "" {
		body.Target = "en"
	}
	out, err := t.opts.Translator.Translate(r.Context(), body.Text, body.Source, body.Target)
	if err != nil {
		t.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{
		Original:       body.Text,
		Translated:     out,
		SourceLanguage: body.Source,
		TargetLanguage: body.Target,
		Success:        true,
	})
}

// handleHistory lists the recorded turns.
//
// @Summary     Conversation history
// @Tags        session
// @Produce     json
// @Success     200  {object}  historyResponse
// @Router      /api/history [get]
func (t *Transport) handleHistory(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		turns := svc.History()
		writeJSON(w, http.StatusOK, historyResponse{History: message.ViewTurns(turns), Total: len(turns)})
	}
}

// handleClear discards the conversation history.
//
// @Summary     Clear conversation history
// @Tags        session
// @Produce     json
// @Success     200  {object}  statusResponse
// @Router      /api/clear [post]
func (t *Transport) handleClear(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ClearHistory()
		writeJSON(w, http.StatusOK, statusResponse{Message: "Conversation history cleared", Success: true})
	}
}

func profilePart(s snapshot.Snapshot) any { return s.Profile }
func marketPart(s snapshot.Snapshot) any  { return s.Market }
func weatherPart(s snapshot.Snapshot) any { return s.Weather }
func pestPart(s snapshot.Snapshot) any    { return s.PestAlerts }
func schemesPart(s snapshot.Snapshot) any { return s.Schemes }

// snapshotPart serves one piece of the domain snapshot.
//
// @Summary     Reference data
// @Description Farmer profile, market prices, weather, pest alerts and government schemes used in prompts.
// @Tags        reference
// @Produce     json
// @Success     200  {object}  snapshot.FarmerProfile
// @Router      /api/profile [get]
// @Router      /api/market [get]
// @Router      /api/weather [get]
// @Router      /api/pest-alerts [get]
// @Router      /api/schemes [get]
func (t *Transport) snapshotPart(svc transport.Service, pick func(snapshot.Snapshot) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Snapshot(r.Context())
		if err != nil {
			t.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pick(snap))
	}
}

// helpQueries are sample farmer queries per intent.
var helpQueries = map[intent.Intent][]string{
	intent.Market: {
		"ariyude vila ethrayanu?",
		"paruthi crop vilkanam eppozhanu nallath?",
		"groundnut rate kooduvano?",
	},
	intent.PestDisease: {
		"paruthi vilayil keedam undu enthanu cheyyendathu?",
		"nellu vilayil rogam vannirikkunnu",
		"spray cheyyendathu evide kittum?",
	},
	intent.Irrigation: {
		"vellam kodukkan eppozhanu nallath?",
		"bore well vellam kurayunnu",
		"drip irrigation nallatho?",
	},
	intent.Weather: {
		"mazha eppozhanu varuka?",
		"kaalaavastha engane undu?",
	},
	intent.Schemes: {
		"government paddhati enthokke undu?",
		"subsidy engane kittum?",
	},
	intent.CropFailureSupport: {
		"vilavu nashtam vannu, compensation kittumo?",
	},
	intent.GeneralAgronomy: {
		"adutha season enthu krishi cheyyanam?",
	},
}

// handleHelp lists sample queries.
//
// @Summary     Sample queries
// @Tags        reference
// @Produce     json
// @Success     200  {object}  map[string][]string
// @Router      /api/help [get]
func (t *Transport) handleHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, helpQueries)
}

// handleHealth reports service status and enabled features.
//
// @Summary     Service health
// @Tags        health
// @Produce     json
// @Success     200  {object}  healthResponse
// @Failure     503  {object}  healthResponse  "Still starting"
// @Router      /health [get]
func (t *Transport) handleHealth(svc transport.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "healthy",
			Message:   "Farmer advisory API is running",
			Features:  t.features(svc),
			Timestamp: t.opts.Now().Format(history.TimestampLayout),
		}
		status := http.StatusOK
		if t.opts.Health != nil && !t.opts.Health.Ready() {
			resp.Status = "starting"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func (t *Transport) features(svc transport.Service) []string {
	features := []string{
		"Chat with AI advisor",
		"Speech-to-text",
		"Advice from remote audio or web pages",
		"Market data",
		"Weather information",
		"Pest alerts",
		"Government schemes",
	}
	if svc.SpeechEnabled() {
		features = append(features, "Text-to-speech")
	}
	if t.opts.Translator != nil {
		features = append(features, "Translation")
	}
	return features
}
