// Package assistant answers free-form questions about using Patungan.
package assistant

import (
	"context"
	"errors"

	"github.com/mmynk/patungan/internal/models"
)

var ErrNotConfigured = errors.New("assistant API key not configured")

// Apology is recorded as the model's reply when the assistant cannot be
// reached.
const Apology = "Maaf, terjadi kesalahan saat menghubungi AI. Pastikan API Key benar dan internet lancar."

// SystemPrompt describes the application to the model. The assistant never
// sees bill data.
const SystemPrompt = `Kamu adalah asisten AI untuk Patungan, aplikasi untuk membagi tagihan bersama teman.
Patungan punya tiga mode: bagi rata (total dibagi jumlah orang), per item (setiap item dibagi ke orang yang ikut memesan),
dan per orang (setiap orang punya item sendiri). Service charge default 5% dan pajak default 10% dihitung dari subtotal
ditambah service charge. Jawab singkat, ramah, dan dalam bahasa yang dipakai pengguna.`

// Assistant produces the model's reply to a transcript. The last message of
// the transcript is the user's new message.
type Assistant interface {
	Reply(ctx context.Context, transcript []models.ChatMessage) (string, error)
}

// Unconfigured is used when no API key is set.
type Unconfigured struct{}

func (Unconfigured) Reply(context.Context, []models.ChatMessage) (string, error) {
	return "", ErrNotConfigured
}
