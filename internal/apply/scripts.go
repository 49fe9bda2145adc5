package apply

// Site coupling: every selector and page script the apply workflow depends
// on lives here, re-derived against the live target. The submission widget
// is a third-party component rendered asynchronously inside a shadow root;
// the text markers checked below are its only stable observable contract.

const applyAnchor = "#applyButton"

// widgetStateScript inspects the widget's shadow DOM for either the
// already-submitted marker or the apply-available marker. It returns a
// tagged result so the caller can distinguish "not rendered yet" from a
// definite state.
const widgetStateScript = `(() => {
	const wc = document.querySelector('apply-button-wc');
	if (!wc) return { found: false, detail: 'no apply-button-wc element' };
	const root = wc.shadowRoot;
	if (!root) return { found: false, detail: 'no shadow root yet' };
	const text = root.textContent || '';
	if (text.includes('Application Submitted')) {
		return { found: true, state: 'already_applied', detail: 'submitted marker present' };
	}
	if (text.includes('Easy apply')) {
		return { found: true, state: 'can_apply', detail: 'apply marker present' };
	}
	return { found: false, detail: 'no marker in shadow DOM' };
})()`

// easyApplyClickScript locates the apply control three different ways before
// giving up; the widget's internal DOM shape has changed between renders.
const easyApplyClickScript = `(() => {
	const wc = document.querySelector('apply-button-wc');
	if (!wc || !wc.shadowRoot) return false;
	const inner = wc.shadowRoot.querySelector('apply-button');
	const btn =
		wc.shadowRoot.querySelector('button.btn.btn-primary') ||
		(inner && inner.shadowRoot && inner.shadowRoot.querySelector('button.btn.btn-primary')) ||
		Array.from(wc.shadowRoot.querySelectorAll('button')).find(b => b.textContent.includes('Easy apply'));
	if (!btn) return false;
	btn.click();
	return true;
})()`

// stepClickScript clicks the wizard button whose label matches exactly;
// used for both the Next and Submit steps.
func stepClickScript(label string) string {
	return `(() => {
	const btn = Array.from(document.querySelectorAll('button.btn-next'))
		.find(b => b.textContent.trim() === '` + label + `');
	if (!btn) return false;
	btn.click();
	return true;
})()`
}

// confirmationScript checks for the post-apply banner.
const confirmationScript = `(() => {
	const h1 = document.querySelector('header.post-apply-banner h1');
	return !!(h1 && h1.textContent.includes('Application submitted'));
})()`
