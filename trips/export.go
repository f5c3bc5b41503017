package trips

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"tripchat/apperr"
	"tripchat/tripstore"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var inviteSecret = []byte(os.Getenv("INVITE_SECRET"))

// InvitePayload builds the signed payload encoded in the export QR code so a
// scanned invite can be verified server side.
func InvitePayload(tripID, userID string) string {
	timestamp := time.Now().Unix()
	data := fmt.Sprintf("%s|%s|%d", tripID, userID, timestamp)

	h := hmac.New(sha256.New, inviteSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyInvitePayload checks the signature on a scanned invite payload and
// returns the trip id it was issued for.
func VerifyInvitePayload(payload string) (string, bool) {
	idx := strings.LastIndex(payload, "|")
	if idx < 0 {
		return "", false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, inviteSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}

	parts := strings.SplitN(data, "|", 2)
	return parts[0], true
}

// GET /api/trips/:tripid/export
// Streams a PDF of the itinerary with an invite QR code other travellers can
// scan to join the trip's room.
func ExportTrip(store *tripstore.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tripID := ps.ByName("tripid")
		userID := GetRequestingUserID(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		trip, err := store.Get(ctx, tripID)
		if apperr.IsNotFound(err) {
			http.Error(w, "Trip not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Error loading trip", http.StatusInternalServerError)
			return
		}

		qrPNG, err := qrcode.Encode(InvitePayload(tripID, userID), qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 16)
		pdf.Cell(40, 10, "Trip Itinerary")
		pdf.Ln(12)

		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 10, fmt.Sprintf("Trip ID: %s", trip.TripID))
		pdf.Ln(8)
		pdf.Cell(0, 10, fmt.Sprintf("Dates: %s - %s", trip.StartDate, trip.EndDate))
		pdf.Ln(8)
		pdf.Cell(0, 10, fmt.Sprintf("Days planned: %d", len(trip.Days)))
		pdf.Ln(12)

		pdf.SetFont("Courier", "", 9)
		for _, line := range strings.Split(tripstore.RenderTrip(trip), "\n") {
			pdf.MultiCell(0, 4, line, "", "L", false)
		}

		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("invite-qr", imageOpts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("invite-qr", 150, 30, 40, 40, false, imageOpts, 0, "")

		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=trip-"+tripID+".pdf")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
