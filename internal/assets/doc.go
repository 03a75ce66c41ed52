// Package assets provides the stylesheets and HTML template that shape
// rendered pages.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and the default page template
//	    ├── FilesystemLoader  - a custom directory on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// AssetResolver is what the CLI uses. A custom directory may override a
// single asset and keep the built-in ones for the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css     # Page layout (e.g., github.css)
//	└── templates/
//	    └── {name}.html    # Page shell (e.g., page.html)
//
// A page template receives .Title, .Stylesheets ([]string) and .Body
// (trusted HTML). The theme stylesheet is injected into <head> afterwards.
//
// # Security
//
// Asset names cannot contain separators or dots. FilesystemLoader resolves
// symlinks and verifies paths stay within basePath.
package assets
