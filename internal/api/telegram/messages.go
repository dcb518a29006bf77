package telegram

const (
	msgStart = `👋 Selamat Datang di Aplikasi Diagnosis Daun Jambu Mete

Aplikasi ini membantu mendeteksi penyakit pada daun jambu mete.
Upload atau foto daun untuk mendapatkan diagnosis secara cepat dan akurat.
Baca informasi tiap penyakit dan cara penanganannya.

📋 Perintah:
/diagnose — mulai diagnosis
/diseases — informasi penyakit
/help — cara menggunakan
/cancel — batalkan operasi`

	msgHelp = `ℹ️ Cara Menggunakan Aplikasi:

1️⃣ Pilih menu Diagnosis untuk memulai pemeriksaan.
2️⃣ Kirim foto daun jambu mete dari galeri atau ambil foto langsung menggunakan kamera.
3️⃣ Sistem akan memproses gambar dan menampilkan hasil diagnosis beserta informasi penyakit.
4️⃣ Untuk membaca penjelasan lengkap tentang tiap penyakit, pilih menu Penyakit.

📋 Perintah:
/diagnose — mulai diagnosis
/diseases — informasi penyakit
/cancel — batalkan operasi`

	msgAwaitingPhoto    = "📸 Kirim foto daun jambu mete (JPG atau PNG) untuk didiagnosis."
	msgCancelled        = "❌ Operasi dibatalkan. Kirim /diagnose untuk diagnosis baru."
	msgSendPhoto        = "📸 Silakan kirim foto daun jambu mete untuk didiagnosis."
	msgUnknownCommand   = "❓ Perintah tidak dikenal. Gunakan /help untuk bantuan."
	msgProcessing       = "⏳ Memproses gambar..."
	msgAlreadyBusy      = "⏳ Gambar sebelumnya masih diproses. Mohon tunggu."
	msgProcessingError  = "⚠️ Gambar tidak dapat diproses. Coba kirim foto lain."
	msgUnsupportedImage = "⚠️ Format tidak didukung. Kirim gambar JPG atau PNG."
	msgModelUnavailable = "⚠️ Model diagnosis belum dimuat. Coba lagi nanti."
	msgModelBusy        = "⏳ Server sedang sibuk. Coba lagi beberapa saat lagi."
	msgDiseasesHeader   = "📖 Informasi Penyakit Daun Jambu Mete"
	msgNoDiseases       = "Belum ada informasi penyakit."

	msgResultHeader = "🔍 Hasil Prediksi:"
	msgRejected     = "⚠️ Gambar ini kemungkinan bukan daun jambu mete."
	msgRecognized   = "✅ Gambar dikenali sebagai: "
)
