package api

import (
	"encoding/xml"
	"net/http"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// renderTwiML builds the messaging reply document Twilio expects.
func renderTwiML(reply string) ([]byte, error) {
	body, err := xml.Marshal(twimlResponse{Message: reply})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func writeTwiML(w http.ResponseWriter, reply string) {
	body, err := renderTwiML(reply)
	if err != nil {
		http.Error(w, "render reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
