// internal/widget/script.go
package widget

import (
	"bytes"
	"encoding/json"
	"text/template"

	"dammi/pkg/accounts"
)

// chatScript is the embeddable chat bubble. AccountID and APIBaseURL are
// injected as JSON-encoded strings; the script itself must degrade
// gracefully on any API failure rather than throwing into the host page.
var chatScript = template.Must(template.New("chat").Parse(`(function () {
  var accountId = {{.AccountID}};
  var apiBaseUrl = {{.APIBaseURL}};

  var bubble = document.createElement('div');
  bubble.style.cssText = "position:fixed;bottom:20px;right:20px;width:60px;height:60px;background:#1E90FF;color:white;font-size:28px;display:flex;align-items:center;justify-content:center;border-radius:50%;cursor:pointer;z-index:9999;box-shadow:0 4px 12px rgba(30,144,255,0.3);";
  bubble.innerText = '💬';
  document.body.appendChild(bubble);

  var chatWindow = document.createElement('div');
  chatWindow.style.cssText = "display:none;position:fixed;bottom:90px;right:20px;width:320px;height:420px;background:white;border:1px solid #ccc;border-radius:10px;z-index:9999;flex-direction:column;box-shadow:0 0 20px rgba(0,0,0,0.15);overflow:hidden;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;";
  chatWindow.innerHTML = '<div style="padding:15px;background:linear-gradient(135deg,#1E90FF,#0066CC);color:white;font-weight:600;display:flex;justify-content:space-between;align-items:center;"><span>Ask Dammi</span><span id="dammi-close" style="cursor:pointer;font-size:18px;opacity:0.8;">&times;</span></div><div id="dammi-messages" style="flex:1;padding:15px;overflow-y:auto;background:#f8f9fa;"></div><div style="padding:10px;border-top:1px solid #eee;background:white;"><input id="dammi-input" placeholder="Ask something..." style="width:100%;border:1px solid #ddd;border-radius:20px;padding:10px 15px;outline:none;font-size:14px;" /></div>';
  document.body.appendChild(chatWindow);

  var isOpen = false;
  function toggleChat() {
    isOpen = !isOpen;
    chatWindow.style.display = isOpen ? 'flex' : 'none';
    if (isOpen) document.getElementById('dammi-input').focus();
  }
  bubble.onclick = toggleChat;
  chatWindow.querySelector('#dammi-close').onclick = toggleChat;

  var input = chatWindow.querySelector('#dammi-input');
  var messages = chatWindow.querySelector('#dammi-messages');

  function addMessage(sender, message, isError) {
    var div = document.createElement('div');
    div.style.cssText = 'margin-bottom:12px;padding:8px 12px;border-radius:12px;max-width:85%;word-wrap:break-word;' +
      (sender === 'You'
        ? 'background:#1E90FF;color:white;margin-left:auto;text-align:right;'
        : 'background:white;border:1px solid #e0e0e0;' + (isError ? 'color:#d32f2f;border-color:#ffcdd2;' : ''));
    var label = document.createElement('div');
    label.style.cssText = 'font-size:12px;opacity:0.7;margin-bottom:2px;';
    label.textContent = sender;
    var body = document.createElement('div');
    body.textContent = message;
    div.appendChild(label);
    div.appendChild(body);
    messages.appendChild(div);
    messages.scrollTop = messages.scrollHeight;
  }

  input.addEventListener('keypress', function (e) {
    if (e.key !== 'Enter') return;
    var question = input.value.trim();
    if (!question) return;

    addMessage('You', question);
    input.value = '';
    input.disabled = true;

    fetch(apiBaseUrl + '/query', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ question: question, account_id: accountId })
    }).then(function (res) {
      if (!res.ok) throw new Error('HTTP ' + res.status);
      return res.json();
    }).then(function (data) {
      addMessage('Dammi', data.answer || "Sorry, I couldn't process your request.");
    }).catch(function () {
      addMessage('Dammi', "Sorry, I'm having trouble connecting right now. Please try again.", true);
    }).finally(function () {
      input.disabled = false;
      input.focus();
    });
  });

  setTimeout(function () {
    addMessage('Dammi', "Hi! I'm here to help. What can I assist you with today?");
  }, 500);
})();
`))

// galleryScript renders the account's images into #dammi-image-gallery on
// the host page. Images is a JSON array of {url, name}.
var galleryScript = template.Must(template.New("gallery").Parse(`(function () {
  var images = {{.Images}};
  var container = document.getElementById('dammi-image-gallery');
  if (!container) return;

  container.style.display = 'grid';
  container.style.gridTemplateColumns = 'repeat(auto-fill, minmax(200px, 1fr))';
  container.style.gap = '16px';

  images.forEach(function (img) {
    var wrapper = document.createElement('div');
    wrapper.style.cssText = 'border:1px solid #ccc;border-radius:8px;overflow:hidden;box-shadow:0 2px 6px rgba(0,0,0,0.1);background:#fff;';
    var image = document.createElement('img');
    image.src = img.url;
    image.alt = img.name || 'image';
    image.style.cssText = 'width:100%;display:block;';
    wrapper.appendChild(image);
    container.appendChild(wrapper);
  });
})();
`))

func renderChatScript(accountID, apiBaseURL string) ([]byte, error) {
	id, err := json.Marshal(accountID)
	if err != nil {
		return nil, err
	}
	base, err := json.Marshal(apiBaseURL)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = chatScript.Execute(&buf, map[string]string{
		"AccountID":  string(id),
		"APIBaseURL": string(base),
	})
	return buf.Bytes(), err
}

func renderGalleryScript(assets []accounts.Asset) ([]byte, error) {
	type image struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}
	images := make([]image, 0, len(assets))
	for _, a := range assets {
		images = append(images, image{URL: a.URL, Name: a.Name})
	}
	blob, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = galleryScript.Execute(&buf, map[string]string{"Images": string(blob)})
	return buf.Bytes(), err
}
