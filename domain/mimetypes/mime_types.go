package mimetypes

import (
	"mime"
	"strings"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"

	ApplicationPDF  MIME = "application/pdf"
	ApplicationDOC  MIME = "application/msword"
	ApplicationDOCX MIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ApplicationZIP  MIME = "application/zip"
	ApplicationRAR  MIME = "application/x-rar-compressed"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
	ImageBMP  MIME = "image/bmp"

	AudioMPEG MIME = "audio/mpeg"
	AudioWAV  MIME = "audio/wav"
	AudioXWAV MIME = "audio/x-wav"
	AudioOGG  MIME = "audio/ogg"
	AudioWEBM MIME = "audio/webm"
	AudioMP4  MIME = "audio/mp4"
	AudioM4A  MIME = "audio/x-m4a"

	VideoMP4  MIME = "video/mp4"
	VideoWEBM MIME = "video/webm"
	VideoOGG  MIME = "video/ogg"
	VideoMOV  MIME = "video/quicktime"
	VideoAVI  MIME = "video/x-msvideo"
)

// Kind is the message type a stored file is attached as.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

var allowed = map[MIME]struct{}{
	TextPlain: {}, ApplicationPDF: {}, ApplicationDOC: {}, ApplicationDOCX: {}, ApplicationZIP: {}, ApplicationRAR: {},
	ImagePNG: {}, ImageJPEG: {}, ImageGIF: {}, ImageWEBP: {}, ImageBMP: {},
	AudioMPEG: {}, AudioWAV: {}, AudioXWAV: {}, AudioOGG: {}, AudioWEBM: {}, AudioMP4: {}, AudioM4A: {},
	VideoMP4: {}, VideoWEBM: {}, VideoOGG: {}, VideoMOV: {}, VideoAVI: {},
}

// ToMIME strips parameters such as charset from a detected type.
func ToMIME(detected string) MIME {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

func (m MIME) Allowed() bool {
	_, ok := allowed[m]
	return ok
}

// Category returns the attachment kind and the upload folder for a type.
func (m MIME) Category() (Kind, string) {
	switch {
	case strings.HasPrefix(string(m), "image/"):
		return KindImage, "images"
	case strings.HasPrefix(string(m), "audio/"):
		return KindAudio, "audio"
	case strings.HasPrefix(string(m), "video/"):
		return KindVideo, "videos"
	default:
		return KindFile, "files"
	}
}

// AsAudio maps containers browsers record voice notes into onto their audio type.
func (m MIME) AsAudio() MIME {
	switch m {
	case VideoWEBM:
		return AudioWEBM
	case VideoOGG:
		return AudioOGG
	case VideoMP4:
		return AudioMP4
	default:
		return m
	}
}
