package main

import (
	"encoding/xml"
	"fmt"

	mbus "github.com/sraeck/libmbus"
)

type xmlRecord struct {
	XMLName       xml.Name `xml:"DataRecord"`
	ID            int      `xml:"id,attr"`
	Function      string   `xml:"Function"`
	StorageNumber int      `xml:"StorageNumber"`
	Unit          string   `xml:"Unit"`
	Value         string   `xml:"Value"`
}

type xmlData struct {
	XMLName xml.Name    `xml:"MBusData"`
	Records []xmlRecord `xml:"DataRecord"`
}

// XMLRenderer implements mbus.Renderer with indented XML output.
type XMLRenderer struct{}

// Render implements mbus.Renderer.
func (XMLRenderer) Render(records []mbus.DataRecord) (string, error) {
	doc := xmlData{Records: make([]xmlRecord, 0, len(records))}
	for i, r := range records {
		doc.Records = append(doc.Records, xmlRecord{
			ID:            i,
			Function:      r.Function,
			StorageNumber: r.StorageNumber,
			Unit:          r.Unit,
			Value:         r.Value,
		})
	}
	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("render xml: %w", err)
	}
	return xml.Header + string(out), nil
}
