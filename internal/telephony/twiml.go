package telephony

import (
	"bytes"
	"encoding/xml"
)

// TurnResponse is one system turn at the provider boundary: the utterance
// to speak and whether to keep listening for a spoken reply afterwards.
type TurnResponse struct {
	Utterance      string
	ListenForReply bool
}

// Speech gathering parameters for Indonesian callers.
const (
	speechLanguage      = "id-ID"
	speechVoice         = "Polly.Joanna"
	gatherTimeoutSec    = 5
	gatherSpeechTimeout = "auto"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Language      string   `xml:"language,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Say           twimlSay `xml:"Say"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// RenderTwiML maps a TurnResponse to provider markup. When listening, the
// utterance is spoken inside a speech Gather posting to turnURL, with a
// Redirect back to retryURL so silence repeats the prompt instead of
// hanging up. Otherwise the utterance is spoken and the leg is terminated.
func RenderTwiML(res TurnResponse, turnURL, retryURL string) (string, error) {
	var r twimlResponse

	if res.ListenForReply {
		r.Verbs = append(r.Verbs, twimlGather{
			Input:         "speech",
			Language:      speechLanguage,
			Timeout:       gatherTimeoutSec,
			SpeechTimeout: gatherSpeechTimeout,
			Action:        turnURL,
			Method:        "POST",
			Say: twimlSay{
				Language: speechLanguage,
				Voice:    speechVoice,
				Text:     res.Utterance,
			},
		})
		r.Verbs = append(r.Verbs, twimlRedirect{Method: "POST", URL: retryURL})
	} else {
		r.Verbs = append(r.Verbs, twimlSay{
			Language: speechLanguage,
			Voice:    speechVoice,
			Text:     res.Utterance,
		})
		r.Verbs = append(r.Verbs, twimlHangup{})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
