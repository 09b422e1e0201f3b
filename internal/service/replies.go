package service

import "fmt"

// Тексты ответов клиентам салона (французский, как на вывеске).
const (
	ReplyWelcome = "Bonjour 👋\nBienvenue au salon ✂️\n\nRépondez :\n1️⃣ pour prendre une place"

	ReplyClosed = "⛔ Le salon n’accepte plus de nouvelles entrées pour le moment.\nMerci de repasser plus tard 🙏"

	ReplyTechnicalError = "❌ Erreur technique"

	ReplySlowDown = "⏳ Trop de messages. Merci de patienter un instant 🙏"

	ReplyQueueEmpty = "❌ Aucun client"

	ReplyPrioritized = "⚡ Client passé en priorité"

	ReplyUnknownEntry = "❌ Client introuvable"

	ReplyRoot = "🚀 Salon Queue est en marche !"

	NotificationMessage = "⏰ Votre tour approche !\nMerci de vous présenter dans ~15 minutes ✂️\nRak qrib 😊"
)

// CheckInCommand is the only message body that takes a place in the queue.
const CheckInCommand = "1"

func ReplyCheckedIn(position, minutes int) string {
	return fmt.Sprintf("✅ C’est noté !\n\n📍 Position : %d\n⏳ Attente estimée : ~%d minutes\n\nNous vous préviendrons quand votre tour approche 😊",
		position, minutes)
}

func ReplyAlreadyWaiting(position, minutes int) string {
	return fmt.Sprintf("✅ Vous êtes déjà dans la file !\n\n📍 Position : %d\n⏳ Attente estimée : ~%d minutes", position, minutes)
}

func ReplyAdvanced(phone string, remaining int) string {
	return fmt.Sprintf("⏭️ Client suivant : %s\nClients restants : %d", phone, remaining)
}
