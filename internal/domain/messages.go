package domain

import (
	"errors"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// User-facing message keys. English text doubles as the catalog key.
const (
	MsgInvalidFileType    = "Please upload a valid video file."
	MsgDurationExceeded   = "Video is too long (%ss). Max %d seconds allowed."
	MsgUnreadableMetadata = "Could not read video metadata. The file may be corrupt."
	MsgVideoProcessing    = "Error loading or processing video file."
	MsgNoFramesExtracted  = "No frames could be extracted from the video."
	MsgEmptyFrameSet      = "No frames were provided to generate a prompt."
	MsgRemoteGeneration   = "Failed to communicate with the AI model. Please check the server logs for details."
	MsgNoVideoSelected    = "No video file selected."
	MsgBusy               = "Another operation is still running."
	MsgNotReady           = "Select a new video file to try again."
	MsgUnknown            = "An unknown error occurred during generation."

	MsgStatusIdle       = "Upload a video clip (max 10s) to begin."
	MsgStatusValidating = "Validating video..."
	MsgStatusGenerating = "Analyzing video & crafting prompt..."
	MsgStatusReady      = "Video ready. Generate a prompt when you like."
	MsgStatusSuccess    = "Generated Prompt:"
	MsgStatusError      = "Error"
)

// SupportedLanguages lists the catalog languages, default first.
var SupportedLanguages = []language.Tag{language.English, language.Indonesian}

var indonesian = map[string]string{
	MsgInvalidFileType:    "Silakan unggah file video yang valid.",
	MsgDurationExceeded:   "Video terlalu panjang (%s dtk). Maksimal %d detik.",
	MsgUnreadableMetadata: "Metadata video tidak dapat dibaca. File mungkin rusak.",
	MsgVideoProcessing:    "Terjadi kesalahan saat memuat atau memproses file video.",
	MsgNoFramesExtracted:  "Tidak ada frame yang dapat diambil dari video.",
	MsgEmptyFrameSet:      "Tidak ada frame untuk membuat prompt.",
	MsgRemoteGeneration:   "Gagal berkomunikasi dengan model AI. Periksa log server untuk detailnya.",
	MsgNoVideoSelected:    "Belum ada file video yang dipilih.",
	MsgBusy:               "Proses lain masih berjalan.",
	MsgNotReady:           "Pilih file video baru untuk mencoba lagi.",
	MsgUnknown:            "Terjadi kesalahan tak dikenal saat membuat prompt.",
	MsgStatusIdle:         "Unggah klip video (maks 10 dtk) untuk memulai.",
	MsgStatusValidating:   "Memvalidasi video...",
	MsgStatusGenerating:   "Menganalisis video & menyusun prompt...",
	MsgStatusReady:        "Video siap. Buat prompt kapan saja.",
	MsgStatusSuccess:      "Prompt yang dihasilkan:",
	MsgStatusError:        "Kesalahan",
}

func init() {
	for key, text := range indonesian {
		_ = message.SetString(language.Indonesian, key, text)
	}
}

// Localize formats a catalog message for the given language.
func Localize(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

// Message converts any pipeline error into its normalized user-facing text.
func Message(err error, tag language.Tag) string {
	if err == nil {
		return ""
	}
	var tooLong *DurationExceededError
	switch {
	case errors.As(err, &tooLong):
		// Plain one-decimal seconds in every locale, no digit grouping.
		return Localize(tag, MsgDurationExceeded, strconv.FormatFloat(tooLong.Duration, 'f', 1, 64), int(tooLong.Limit))
	case errors.Is(err, ErrInvalidFileType):
		return Localize(tag, MsgInvalidFileType)
	case errors.Is(err, ErrUnreadableMetadata):
		return Localize(tag, MsgUnreadableMetadata)
	case errors.Is(err, ErrNoFramesExtracted):
		return Localize(tag, MsgNoFramesExtracted)
	case errors.Is(err, ErrVideoProcessing):
		return Localize(tag, MsgVideoProcessing)
	case errors.Is(err, ErrEmptyFrameSet):
		return Localize(tag, MsgEmptyFrameSet)
	case errors.Is(err, ErrRemoteGeneration):
		return Localize(tag, MsgRemoteGeneration)
	case errors.Is(err, ErrNoVideoSelected):
		return Localize(tag, MsgNoVideoSelected)
	case errors.Is(err, ErrBusy):
		return Localize(tag, MsgBusy)
	case errors.Is(err, ErrNotReady):
		return Localize(tag, MsgNotReady)
	default:
		return Localize(tag, MsgUnknown)
	}
}
