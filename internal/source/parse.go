package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/marketlens/internal/model"
)

// ParseJSON reads listings from a JSON array, or from an object wrapping the
// array under "products", "items" or "results".
func ParseJSON(body []byte) ([]model.RawRecord, error) {
	body = bytes.TrimSpace(body)

	var items []map[string]any
	if len(body) > 0 && body[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode listing object: %w", err)
		}
		for _, key := range []string{"products", "items", "results"} {
			if raw, ok := wrapper[key]; ok {
				body = raw
				break
			}
		}
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode listing array: %w", err)
	}

	records := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		rec := model.RawRecord{
			Title:  firstString(item, "title", "name"),
			Price:  firstString(item, "price", "price_text"),
			Seller: firstString(item, "seller", "brand", "store"),
			URL:    firstString(item, "url", "link"),
		}
		if v, ok := firstNumber(item, "rating", "stars"); ok {
			rec.Rating = &v
		}
		if v, ok := firstNumber(item, "rating_count", "review_count", "reviews"); ok {
			n := int(v)
			rec.RatingCount = &n
		}
		records = append(records, rec)
	}
	return records, nil
}

func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(item map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// ParseHTML extracts schema.org Product microdata from a listing page
func ParseHTML(body []byte) ([]model.RawRecord, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var records []model.RawRecord
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isProductScope(n) {
			records = append(records, productFromScope(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return records, nil
}

func isProductScope(n *html.Node) bool {
	if _, ok := attr(n, "itemscope"); !ok {
		return false
	}
	t, _ := attr(n, "itemtype")
	return strings.HasSuffix(strings.TrimRight(t, "/"), "schema.org/Product")
}

func productFromScope(scope *html.Node) model.RawRecord {
	var rec model.RawRecord

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if prop, ok := attr(n, "itemprop"); ok {
				switch prop {
				case "name":
					if rec.Title == "" {
						rec.Title = propValue(n)
					}
				case "price":
					if rec.Price == "" {
						rec.Price = propValue(n)
					}
				case "ratingValue":
					if f, err := strconv.ParseFloat(propValue(n), 64); err == nil && rec.Rating == nil {
						rec.Rating = &f
					}
				case "reviewCount", "ratingCount":
					if c, err := strconv.Atoi(strings.ReplaceAll(propValue(n), ",", "")); err == nil && rec.RatingCount == nil {
						rec.RatingCount = &c
					}
				case "seller", "brand":
					if rec.Seller == "" {
						rec.Seller = propValue(n)
					}
					// The nested name belongs to the seller, not the product
					return
				case "url":
					if rec.URL == "" {
						rec.URL = propValue(n)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := scope.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	return rec
}

// propValue follows the microdata value rules for the elements listings use
func propValue(n *html.Node) string {
	if v, ok := attr(n, "content"); ok {
		return strings.TrimSpace(v)
	}
	switch n.Data {
	case "a", "link":
		v, _ := attr(n, "href")
		return strings.TrimSpace(v)
	case "meta":
		return ""
	}
	return strings.Join(strings.Fields(textContent(n)), " ")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
