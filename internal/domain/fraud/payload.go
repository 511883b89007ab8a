package fraud

import (
	"fmt"
	"strings"
)

const (
	documentStart = "--- ATTACHED DOCUMENT CONTENT START ---"
	documentEnd   = "--- ATTACHED DOCUMENT CONTENT END ---"
)

// Instruction texts sent after the attachment. The "With" variants are used
// when the caller also supplied text and the model should cross-reference.
const (
	imageInstructionWith    = "Also analyze the provided image for visual indicators of scams and consistency with the text."
	imageInstruction        = "Analyze the provided image for visual indicators of scams (fake screenshots, manipulated branding)."
	pdfInstructionWith      = "Also analyze the provided PDF document context and consistency with the user text."
	pdfInstruction          = "Analyze the provided PDF document for fraud indicators, suspicious contract terms, or fake formatting."
	mediaInstruction        = "Analyze the audio/video content. 1) Transcribe the speech. 2) Analyze the spoken content and visual cues (if video) for fraud indicators like urgency, voice cloning artifacts, or scam scripts."
	documentInstructionWith = "Analyze the user provided text and the attached document content above for fraud."
	documentInstruction     = "Analyze the attached document content above for potential fraud or scam indicators."
)

// TextPrompt is the leading segment emitted for caller text.
func TextPrompt(text string) string {
	return `Analyze this content for fraud, scams, or malicious intent. Text content: "` + text + `"`
}

// Assemble turns an Input into the ordered segments the model expects:
// caller text first, the attachment next, a trailing instruction last.
func Assemble(in Input) ([]Segment, error) {
	var segs []Segment
	hasText := in.Text != ""

	if hasText {
		segs = append(segs, TextSegment(TextPrompt(in.Text)))
	}

	if att := in.Attachment; att != nil {
		mt := att.MIMEType
		switch {
		case strings.HasPrefix(mt, "image/"):
			segs = append(segs,
				BinarySegment(att.Data, mt),
				TextSegment(pick(hasText, imageInstructionWith, imageInstruction)),
			)
		case mt == "application/pdf":
			segs = append(segs,
				BinarySegment(att.Data, mt),
				TextSegment(pick(hasText, pdfInstructionWith, pdfInstruction)),
			)
		case strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"):
			segs = append(segs,
				BinarySegment(att.Data, mt),
				TextSegment(mediaInstruction),
			)
		case mt == "text/plain":
			segs = append(segs,
				TextSegment("\n"+documentStart+"\n"+string(att.Data)+"\n"+documentEnd+"\n"),
				TextSegment(pick(hasText, documentInstructionWith, documentInstruction)),
			)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
		}
	}

	if len(segs) == 0 {
		return nil, ErrEmptyInput
	}
	return segs, nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
