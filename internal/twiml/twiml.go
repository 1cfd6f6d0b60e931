package twiml

import "encoding/xml"

// Response is the call-control document returned to the telephony
// platform. Verbs execute in order; only the fields the platform
// understands are modeled.
// Twilio expects Content-Type: text/xml.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Say     *Say     `xml:"Say,omitempty"`
	Dial    *Dial    `xml:"Dial,omitempty"`
	Hangup  *Hangup  `xml:"Hangup,omitempty"`
}

// Say speaks a message to the caller
type Say struct {
	Language string `xml:"language,attr,omitempty"`
	Voice    string `xml:"voice,attr,omitempty"`
	Text     string `xml:",chardata"`
}

// Dial connects the current call to a number or a browser client
type Dial struct {
	CallerID                     string `xml:"callerId,attr,omitempty"`
	Record                       string `xml:"record,attr,omitempty"`
	StatusCallback               string `xml:"statusCallback,attr,omitempty"`
	StatusCallbackEvent          string `xml:"statusCallbackEvent,attr,omitempty"`
	StatusCallbackMethod         string `xml:"statusCallbackMethod,attr,omitempty"`
	RecordingStatusCallback      string `xml:"recordingStatusCallback,attr,omitempty"`
	RecordingStatusCallbackEvent string `xml:"recordingStatusCallbackEvent,attr,omitempty"`

	Number string `xml:"Number,omitempty"`
	Client string `xml:"Client,omitempty"`
}

// Hangup ends the call
type Hangup struct{}

// ContentType is the wire content type for rendered documents
const ContentType = "text/xml; charset=utf-8"

// Render serializes the document with the XML header
func (r *Response) Render() ([]byte, error) {
	out, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
