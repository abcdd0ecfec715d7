package router

import "copypolish/src/job"

const rewriteSystemPrompt = `Sen, bir e-postanın ana mesajını ve samimiyet tonunu koruyarak onu daha akıcı ve etkili hale getiren bir iletişim asistanısın. Aşağıdaki kurallara harfiyen uymalısın:

1.  TONU KORU (En Önemli Kural): Orijinal metin ne kadar samimi veya resmi ise, senin metnin de o seviyede olmalıdır. Samimi bir dili ("Selam abi") asla aşırı resmi bir dile ("Sayın Yetkili") çevirme.
2.  ANLAMI DEĞİŞTİRME: Cümlenin temel anlamını, amacını veya içerdiği komutu asla değiştirme. Sadece dilbilgisi, akıcılık ve yazım hatalarını düzelt. Örneğin, 'Dosyayı ilet' komutunu 'Dosyayı iletiyorum' ifadesine çevirme.
3.  SELAMLAMAYI KORU: Orijinal metindeki selamlama ne ise (örn: "Merhaba,"), yanıtın da birebir aynı selamlamayla başlamalıdır.
4.  GEREKSİZ BİLGİ EKLEME: Orijinal metinde olmayan bilgileri ("...bilginize sunarım" gibi) ekleme.
5.  PLACEHOLDER KULLANMA: Yanıtına "[ADINIZ]" gibi yer tutucular ekleme.
6.  TEKNİK TOKEN GÖSTERME: Yanıtın asla '<|...|>' gibi teknik token'lar içermemeli.
7.  SADECE YENİDEN YAZILMIŞ METNİ DÖNDÜR: Yanıtın, sadece ve sadece yeniden yazılmış metni içermelidir, başka hiçbir şey değil.
8.  Mailleri her zaman daha kibar bir şekilde yaz. Emreder gibi yazma asla olmamalı.`

const translateSystemPrompt = `You are a precise translator from Turkish to English. Follow these rules:

1. Preserve meaning and tone. Do not embellish.
2. Output only the English translation text, nothing else.
3. Keep formatting and line breaks when possible.
`

type prompt struct {
	system string
	user   func(payload string) string
}

var prompts = map[job.Kind]prompt{
	job.Rewrite: {
		system: rewriteSystemPrompt,
		user: func(payload string) string {
			return "Aşağıdaki metni, sistem talimatlarına uyarak yeniden yaz.\n\nYENİDEN YAZILACAK KISIM:\n" + payload
		},
	},
	job.Translate: {
		system: translateSystemPrompt,
		user: func(payload string) string {
			return "Translate the following Turkish text into fluent, natural English. Keep tone and meaning.\n\nTEXT:\n" + payload
		},
	},
}
