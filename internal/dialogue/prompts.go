package dialogue

import "fmt"

// The workshop speaks Bahasa Indonesia to its customers; all prompts and
// fallback lines below are intentionally in Indonesian.

const systemPersona = "Anda adalah customer service Toyota yang ramah dan profesional."

// FallbackGreeting is spoken when the language model cannot produce an
// opening utterance. The call proceeds with this scripted line instead of
// aborting.
func FallbackGreeting(customerName, vehicleModel string) string {
	return fmt.Sprintf("Selamat pagi Pak/Bu %s, saya dari Toyota Denpasar. "+
		"Kami ingin mengingatkan bahwa %s Bapak/Ibu sudah waktunya untuk service rutin. "+
		"Apakah Bapak/Ibu berkenan untuk kami buatkan jadwal service?", customerName, vehicleModel)
}

func reminderGreetingPrompt(p GreetParams) string {
	return fmt.Sprintf(`Buat greeting ramah dalam Bahasa Indonesia untuk mengingatkan customer service kendaraan.

Detail:
- Nama Customer: %s
- Model Kendaraan: %s
- Service Terakhir: %s

Greeting harus:
1. Ramah dan profesional
2. Menyebutkan nama customer
3. Mengingatkan sudah waktunya service
4. Menawarkan untuk booking jadwal
5. Maksimal 3 kalimat`, p.CustomerName, p.VehicleModel, p.LastServiceDate)
}

func bookingGreetingPrompt(p GreetParams) string {
	return fmt.Sprintf(`Buat greeting ramah dalam Bahasa Indonesia untuk konfirmasi booking service.

Detail:
- Nama Customer: %s
- Model Kendaraan: %s

Greeting harus:
1. Ramah dan profesional
2. Menyebutkan nama customer
3. Konfirmasi booking service
4. Tanya jadwal yang diinginkan
5. Maksimal 3 kalimat`, p.CustomerName, p.VehicleModel)
}

func respondSystemPrompt(p RespondParams) string {
	return fmt.Sprintf(`Anda adalah AI customer service Toyota Denpasar yang ramah dan profesional.

Konteks:
- Customer: %s
- Kendaraan: %s
- Tujuan: Booking service appointment

Tugas Anda:
1. Pahami respons customer
2. Jika customer setuju, tanyakan jadwal yang diinginkan (tanggal dan jam)
3. Jika customer menolak, tanyakan alasan dan tawarkan alternatif
4. Jika customer bertanya, jawab dengan informasi yang relevan
5. Selalu ramah dan profesional
6. Gunakan Bahasa Indonesia yang sopan

Respons Anda harus dalam format JSON:
{
    "message": "respons Anda ke customer",
    "intent": "agree|decline|question|schedule",
    "booking_confirmed": true/false,
    "scheduled_date": "YYYY-MM-DD" (jika ada),
    "scheduled_time": "HH:MM" (jika ada),
    "needs_followup": true/false
}`, p.CustomerName, p.VehicleModel)
}
